// AgentHub CLI - Command line client for AgentHub
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Magicred-1/agenthub/clients/go/agenthub"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("AGENTHUB_URL")
	client := agenthub.NewClient(baseURL)
	client.Token = os.Getenv("AGENTHUB_TOKEN")

	ctx := context.Background()
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health(ctx)
		exitOnError(err)
		printJSON(resp)

	case "register":
		if len(os.Args) < 5 {
			fmt.Fprintln(os.Stderr, "Usage: agenthub register <name> <email> <password>")
			os.Exit(1)
		}
		resp, err := client.Register(ctx, os.Args[2], os.Args[3], os.Args[4])
		exitOnError(err)
		fmt.Printf("Registered as %s\nToken: %s\n", resp.Profile.Email, resp.Token)

	case "login":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: agenthub login <email> <password>")
			os.Exit(1)
		}
		resp, err := client.Login(ctx, os.Args[2], os.Args[3])
		exitOnError(err)
		fmt.Printf("Logged in as %s\nToken: %s\n", resp.Profile.Email, resp.Token)

	case "agents":
		resp, err := client.ListAgents(ctx)
		exitOnError(err)
		for _, a := range resp.Agents {
			status := "active"
			if !a.IsActive {
				status = "inactive"
			}
			fmt.Printf("  %s  %s (%s, %s)\n", a.ID, a.Name, a.Type, status)
		}

	case "send":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: agenthub send <agent_id> <message>")
			os.Exit(1)
		}
		resp, err := client.SendMessage(ctx, os.Args[2], os.Args[3], userName(), "")
		exitOnError(err)
		fmt.Println(resp.Text)

	case "chat":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: agenthub chat <agent_id>")
			os.Exit(1)
		}
		chat(ctx, client, os.Args[2])

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

// chat runs an interactive session with one agent. Errors from the relay
// show up in the thread as agent replies, same as the app behaves.
func chat(ctx context.Context, client *agenthub.Client, agentID string) {
	agentName := ""
	if resp, err := client.ListAgents(ctx); err == nil {
		for _, a := range resp.Agents {
			if a.ID == agentID {
				agentName = a.Name
				break
			}
		}
	}

	session := agenthub.NewSession(client, userName())
	session.SelectAgent(agentID, agentName)

	label := agentName
	if label == "" {
		label = "agent"
	}
	fmt.Printf("Chatting with %s. Ctrl-D to quit.\n", label)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		reply, _ := session.Send(ctx, text)
		fmt.Printf("%s: %s\n", label, reply.Content)
	}
	fmt.Println()
}

func userName() string {
	if name := os.Getenv("AGENTHUB_USER"); name != "" {
		return name
	}
	return "User"
}

func usage() {
	fmt.Println(`AgentHub CLI - chat with AI agent profiles

Usage: agenthub <command> [options]

Commands:
  register <name> <email> <password>   Create an account
  login <email> <password>             Log in and print a token
  agents                               List your agents
  send <agent_id> <message>            Send one message
  chat <agent_id>                      Interactive chat session
  health                               Check server health

Environment:
  AGENTHUB_URL     Server URL (default: http://localhost:8080)
  AGENTHUB_TOKEN   Session token from register/login
  AGENTHUB_USER    Display name sent with messages (default: User)`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
