package auth

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"gaugetrack.GO/config"
	authRepo "gaugetrack.GO/model/repository/auth"
)

// Middleware returns the auth middleware based on AUTH_TYPE env var.
// Permission checks belong upstream; this layer only establishes the
// actor identity recorded in the ledger.
func Middleware(db *gorm.DB) echo.MiddlewareFunc {
	skipper := buildSkipper()
	authType := os.Getenv("AUTH_TYPE")
	switch authType {
	case "key":
		return keyAuth(skipper)
	case "token":
		return tokenAuth(authRepo.NewAuthRepository(db), skipper)
	default:
		return basicAuth(skipper)
	}
}

// Actor returns the authenticated actor reference for the request.
func Actor(c echo.Context) string {
	if v, ok := c.Get("actor").(string); ok && v != "" {
		return v
	}
	return "unknown"
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}

func basicAuth(skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Validator: func(username, password string, c echo.Context) (bool, error) {
			if username == os.Getenv("API_USER") && password == os.Getenv("API_PASS") {
				c.Set("actor", username)
				return true, nil
			}
			return false, nil
		},
		Skipper: skipper,
	})
}

func keyAuth(skipper middleware.Skipper) echo.MiddlewareFunc {
	apiKey := os.Getenv("API_KEY")
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(key string, c echo.Context) (bool, error) {
			if key == apiKey {
				c.Set("actor", os.Getenv("API_KEY_ACTOR"))
				return true, nil
			}
			return false, nil
		},
		Skipper: skipper,
	})
}

func tokenAuth(repo *authRepo.AuthRepository, skipper middleware.Skipper) echo.MiddlewareFunc {
	staticKey := os.Getenv("API_KEY")
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(token string, c echo.Context) (bool, error) {
			if staticKey != "" && token == staticKey {
				c.Set("auth_type", "static")
				c.Set("actor", os.Getenv("API_KEY_ACTOR"))
				return true, nil
			}
			apiToken, err := repo.FindActiveToken(token)
			if err != nil {
				return false, nil
			}
			c.Set("auth_type", "token")
			c.Set("actor", apiToken.ActorRef)
			return true, nil
		},
		Skipper: skipper,
	})
}
