// Command devtoken prints a bearer token for local testing against the API.
// Real deployments get tokens from the external auth service.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mindmirror/mindmirror-backend/internal/app"
	"github.com/mindmirror/mindmirror-backend/internal/platform/envutil"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
	"github.com/mindmirror/mindmirror-backend/internal/services"
)

func main() {
	owner := flag.String("owner", "", "owner id placed in the sub claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *owner == "" {
		fmt.Fprintln(os.Stderr, "devtoken: -owner is required")
		os.Exit(2)
	}

	log := logger.NewNop()
	app.LoadDotEnv(log)
	secret := envutil.String("JWT_SECRET_KEY", "defaultsecret", log)

	token, err := services.NewAuthService(log, secret).IssueToken(*owner, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
