package main

import (
	"github.com/biosecret/go-todo/app"
	_ "github.com/biosecret/go-todo/docs"
)

// @title                       go-todo API
// @version                     1.0
// @description                 Multi-user to-do list backend.
// @BasePath                    /api
// @securityDefinitions.apikey  TokenAuth
// @in                          header
// @name                        Authorization
// @description                 "Token <key>" returned by /api/login/

func main() {
	// setup and run app
	err := app.SetupAndRunApp()
	if err != nil {
		panic(err)
	}
}
