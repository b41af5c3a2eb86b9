package main

import "github.com/frahmantamala/erp-rbac/cmd"

func main() {
	cmd.Execute()
}
