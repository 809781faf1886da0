// Command invitectl mints and lists single-use registration invite codes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Jasujung99/echo-note-whisper-app/internal/crypto"
	"github.com/Jasujung99/echo-note-whisper-app/internal/nickgen"
	"github.com/Jasujung99/echo-note-whisper-app/internal/repository/postgres"
)

const codeLen = 8

func main() {
	dsn := flag.String("dsn", "", "PostgreSQL DSN (env ENW_DSN)")
	n := flag.Int("n", 1, "number of codes to generate")
	list := flag.Bool("list", false, "list existing codes instead of generating")
	flag.Parse()

	_ = godotenv.Load()
	if *dsn == "" {
		*dsn = os.Getenv("ENW_DSN")
	}
	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "missing DSN (--dsn or ENW_DSN)")
		os.Exit(2)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, *dsn)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		os.Exit(1)
	}
	defer db.Close()

	invites := postgres.NewInviteRepo(db)

	if *list {
		codes, err := invites.List(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list:", err)
			os.Exit(1)
		}
		for _, ic := range codes {
			state := "unused"
			if ic.IsUsed {
				state = "used"
			}
			fmt.Printf("%s\t%s\t%s\n", ic.Code, state, ic.Nickname)
		}
		return
	}

	for i := 0; i < *n; i++ {
		code, err := crypto.NewInviteCode(codeLen)
		if err != nil {
			fmt.Fprintln(os.Stderr, "generate:", err)
			os.Exit(1)
		}
		nickname := nickgen.Random()
		if err := invites.Create(ctx, code, nickname); err != nil {
			fmt.Fprintln(os.Stderr, "create:", err)
			os.Exit(1)
		}
		fmt.Printf("%s\t%s\n", code, nickname)
	}
}
