// Package slotstore provides a client for interacting with a slotstore
// server over TCP.
//
// Example:
//
//	client, err := slotstore.Connect()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	rec, err := client.Create([]byte("Hey works"))
//	content, err := client.Get(rec.ID)
package slotstore
