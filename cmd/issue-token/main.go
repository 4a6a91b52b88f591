package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"go-powder-ledger/internal/config"
	"go-powder-ledger/pkg/jwt"
)

// issue-token mints an operator bearer token signed with JWT_SECRET.
//
//	go run ./cmd/issue-token -sub op-17 -name "Line Lead" -scopes stock:write,gas:write
func main() {
	subject := flag.String("sub", "", "operator id recorded as created_by")
	name := flag.String("name", "", "operator display name")
	scopes := flag.String("scopes", strings.Join(jwt.AllScopes, ","), "comma separated write scopes")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	// 1. Load Env
	cfg, _, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.AuthEnabled() {
		log.Fatal("JWT_SECRET is not set")
	}
	if *subject == "" {
		log.Fatal("-sub is required")
	}

	var granted []string
	for _, s := range strings.Split(*scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			granted = append(granted, s)
		}
	}

	// 2. Sign
	token, err := jwt.GenerateToken([]byte(cfg.JWTSecret), *subject, *name, granted, *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
}
