package main

import "browser-automator/internal/bootstrap"

func main() {
	bootstrap.NewApp().Run()
}
