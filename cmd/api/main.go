// Package main ED Rewards API
//
// ED Rewards is the backend of a rewards application: users buy virtual mining
// machines with mobile money, claim the ED tokens those machines earn every
// period, watch ads for small rewards and invite friends for referral bonuses.
//
//  1. Every balance change goes through a single idempotent ledger.
//
//  2. Payments are confirmed by provider webhooks, client reconciliation or a
//     background poller, whichever arrives first.
//
//     Schemes: http, https
//     Host: localhost:8080
//     BasePath: /api/v1
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - bearer
package main

import (
	"context"

	_ "github.com/saradorri/edrewards/docs"
	"github.com/saradorri/edrewards/internal/app"
)

// @title ED Rewards API Service
// @version 1.0
// @description Machine purchases, earning claims, ad rewards, referrals and withdrawals over a single balance ledger.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx := context.Background()
	application := app.NewApplication(ctx)
	application.Setup()
}
