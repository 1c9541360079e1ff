package main

import (
	"fmt"
	"os"

	_ "github.com/modernhn/modernhn/cmd/cli/auth"
	_ "github.com/modernhn/modernhn/cmd/cli/favorites"
	"github.com/modernhn/modernhn/cmd/cli/root"
	_ "github.com/modernhn/modernhn/cmd/cli/stories"
	_ "github.com/modernhn/modernhn/cmd/cli/users"
)

func main() {
	if err := root.GetRoot().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
