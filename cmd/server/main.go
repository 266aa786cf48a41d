package main

import (
	"log"

	"github.com/isaidso/auth/internal/server"
)

func main() {

	app, err := server.NewApp()
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run()

}
