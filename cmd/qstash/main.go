package main

import (
	"log"

	"github.com/austindbirch/qstash-go/cmd/qstash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
