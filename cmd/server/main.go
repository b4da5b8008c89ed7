package main

import "depuente/internal/app/server"

func main() {
	server.Run()
}
