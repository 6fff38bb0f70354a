// Command hashpw prints a users entry with a bcrypt password hash for the
// server's JSON config.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/mysociety/internal/server/users"
)

func main() {
	username := flag.String("u", "", "user name")
	role := flag.String("r", "resident", "role: admin, treasurer or resident")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	if *username == "" {
		log.Fatal("-u is required")
	}

	account, err := users.PromptAccount(os.Stderr, *username, *role, *cost)
	if err != nil {
		log.Fatalf("%v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(account); err != nil {
		log.Fatalf("%v", err)
	}
}
