package core

const (
	DataDirName            = "data" // Name of the directory holding both stores
	DefaultDirectoryPath   = "./"
	DefaultContentFileName = "collections.db"
	DefaultIndexFileName   = "index.db"

	DefaultSyncInterval = 15
	MinimumSyncInterval = 1
)
