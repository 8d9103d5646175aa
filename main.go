package main

import "github.com/frahmantamala/karyawan-management/cmd"

func main() {
	cmd.Execute()
}
