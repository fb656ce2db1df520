package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userName)
}

// Run reads commands from stdin until exit or EOF.
func (a *App) Run(ctx context.Context) {

	log.Println("Welcome to zkauth CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("zkauth %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			fmt.Println("Available commands: register, login, whoami, token, ping, exit")

		case "register":
			if err := a.Register(ctx); err != nil {
				log.Printf("Registration failed: %s", err.Error())
			}
		case "login":
			if err := a.Login(ctx); err != nil {
				log.Printf("Login failed: %s", err.Error())
			}
		case "whoami":
			if a.isLoggedIn() {
				fmt.Println(a.userName)
			} else {
				fmt.Println("not logged in")
			}
		case "token":
			if a.isLoggedIn() {
				fmt.Printf("%s %s (expires in %ds)\n", a.token.TokenType, a.token.Token, a.token.ExpiresIn)
			} else {
				fmt.Println("not logged in")
			}
		case "ping":
			if err := a.authService.Ping(ctx); err != nil {
				log.Printf("Server unavailable: %s", err.Error())
			} else {
				fmt.Println("OK")
			}
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
