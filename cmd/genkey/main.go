// Command genkey prints a random hex secret suitable for JWT_SECRET.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
)

func main() {
	size := flag.Int("bytes", 32, "secret length in bytes before hex encoding")
	flag.Parse()

	buf := make([]byte, *size)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("read random: %v", err)
	}
	fmt.Println(hex.EncodeToString(buf))
}
