package main

import (
	"log"

	"github.com/velatra/photofolio/cmd"
	"github.com/velatra/photofolio/config"
)

func main() {
	log.Printf("photofolio %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
