package models

type Item struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// SeedNames is the starting list used by the in-memory store and fresh databases.
var SeedNames = []string{
	"Item One",
	"Item Two",
	"Item Three",
	"Item Four",
	"Item Five",
	"Item Six",
	"Item Seven",
	"Item Eight",
}
