// Command devtoken prints a session token signed with JWT_SECRET, for
// calling the API locally without the hosted auth provider.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"socialhub-app/internal/infra/authn"
)

func main() {
	sub := flag.String("sub", "user_dev", "subject (external auth id)")
	email := flag.String("email", "dev@example.com", "email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logrus.Fatal("JWT_SECRET not set")
	}

	token, err := authn.SignHMAC(secret, *sub, *email, time.Now().Add(*ttl))
	if err != nil {
		logrus.WithError(err).Fatal("sign token")
	}
	fmt.Println(token)
}
