// Command devtoken mints an HS256 access token for local testing.  The
// engine trusts an external identity provider in production.
//
//    devtoken -sub 7 -role CLIENT -email guest@example.com
package main

import (
    "flag"
    "fmt"
    "os"
    "time"

    "github.com/joho/godotenv"

    "github.com/iliyamo/hotel-booking-engine/internal/model"
    "github.com/iliyamo/hotel-booking-engine/internal/utils"
)

func main() {
    _ = godotenv.Load()
    sub := flag.Uint64("sub", 1, "user id placed in the sub claim")
    role := flag.String("role", string(model.RoleClient), "CLIENT, RECEPTION or ADMIN")
    email := flag.String("email", "", "optional email claim")
    ttl := flag.Duration("ttl", time.Hour, "token lifetime")
    secret := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret (defaults to JWT_SECRET)")
    flag.Parse()

    r := model.ParseRole(*role)
    if r == "" {
        fmt.Fprintf(os.Stderr, "devtoken: unknown role %q\n", *role)
        os.Exit(2)
    }
    if *secret == "" || *sub == 0 {
        fmt.Fprintln(os.Stderr, "devtoken: -secret (or JWT_SECRET) and a non-zero -sub are required")
        os.Exit(2)
    }
    tok, err := utils.NewAccessToken(*secret, *sub, string(r), *email, *ttl)
    if err != nil {
        fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
        os.Exit(1)
    }
    fmt.Println(tok.Token)
}
