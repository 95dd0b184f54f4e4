// Command devtoken prints an access token for local testing.  Tokens are
// issued by the identity service in deployed environments.
//
//	devtoken <user-id> [CUSTOMER|ADMIN]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

func main() {
	config.LoadDotEnv()
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: devtoken <user-id> [CUSTOMER|ADMIN]")
		os.Exit(2)
	}
	uid, err := strconv.ParseUint(os.Args[1], 10, 64)
	if err != nil || uid == 0 {
		fmt.Fprintf(os.Stderr, "invalid user id %q\n", os.Args[1])
		os.Exit(2)
	}
	role := model.RoleCustomer
	if len(os.Args) > 2 {
		role = os.Args[2]
	}
	if role != model.RoleCustomer && role != model.RoleAdmin {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", role)
		os.Exit(2)
	}

	tc := config.LoadTokenConfig()
	tok, err := utils.NewAccessToken(tc.JWTSecret, uid, role, tc.AccessTTLMin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
}
