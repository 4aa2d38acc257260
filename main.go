package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/trinitydb/impossible-trinity/cmd/app"
)

// @title          Impossible Trinity Database
// @description    JSON endpoints of the Impossible Trinity Database site.
//
// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html
//
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session
func main() {
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}
