package main

func main() {
	SetupServeCmd()
	SetupCatalogCmd()
	SetupCheckCmd()
	Execute()
}
