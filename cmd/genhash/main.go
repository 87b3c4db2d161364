// Command genhash prints the bcrypt hash of a password, for seeding users
// by hand.
//
// Usage: genhash <password>
package main

import (
	"fmt"
	"log"
	"os"

	"pbank/auth"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <password>", os.Args[0])
	}
	hashed, err := auth.HashPassword(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(hashed)
}
