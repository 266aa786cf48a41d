package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

// Main runs the REPL until the user exits or stdin closes.
func (a *App) Main(ctx context.Context) {

	fmt.Println("isaidso CLI (type 'help' for commands)")

	for {
		fmt.Printf("isaidso %s > ", a.prompt())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			break
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: whoami, refresh, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, forgot, exit")
			}

		case "register":
			a.run(ctx, a.Register)
		case "login":
			a.run(ctx, a.Login)
		case "forgot":
			a.run(ctx, a.ForgotPassword)
		case "whoami":
			a.run(ctx, a.Whoami)
		case "refresh":
			a.run(ctx, a.Refresh)
		case "logout":
			a.run(ctx, a.Logout)
		case "exit", "quit":
			fmt.Println("Bye!")
			return

		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

func (a *App) prompt() string {
	if a.isLoggedIn() {
		return "*"
	}
	return "-"
}

func (a *App) run(ctx context.Context, cmd func(context.Context) error) {
	if err := cmd(ctx); err != nil {
		log.Printf("error: %v", err)
	}
}

// ForgotPassword prompts for the address and requests a reset link.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	msg, err := a.client.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}
