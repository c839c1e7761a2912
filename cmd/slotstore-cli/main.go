package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/0xRadioAc7iv/go-slotstore/core"
	"github.com/0xRadioAc7iv/go-slotstore/internal"
	"github.com/0xRadioAc7iv/go-slotstore/internal/utils"
	"github.com/0xRadioAc7iv/go-slotstore/slotstore"
)

func main() {
	host := flag.String("host", internal.DEFAULT_HOST, "slotstore server host")
	port := flag.Int("port", internal.DEFAULT_PORT, "slotstore server port")
	flag.Parse()

	client, err := slotstore.Connect(slotstore.WithHost(*host), slotstore.WithPort(*port))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	fmt.Printf("Connected to %v:%d\n", *host, *port)
	fmt.Println("Type commands. 'help' for information or 'exit' to quit.")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("input error:", err)
			return
		}

		line = strings.TrimSpace(line)

		if line == "" {
			continue
		}

		if line == "exit" {
			return
		}

		cmd, arg, value, err := utils.SplitStringIntoCommandAndArguments(line)
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}

		if cmd == "reset" && !confirm(reader) {
			continue
		}

		resp, err := client.Execute(cmd, arg, []byte(value))
		if err != nil {
			if _, ok := err.(*slotstore.ServerError); ok {
				fmt.Println("error:", err)
				continue
			}
			log.Fatal(err)
		}

		fmt.Println(resp)
	}
}

func confirm(reader *bufio.Reader) bool {
	fmt.Printf("reset discards everything in %s/. type 'yes' to continue: ", core.DataDirName)

	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(answer) == "yes"
}
