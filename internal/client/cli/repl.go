package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	role() string
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Employees(ctx context.Context) error
	Employee(ctx context.Context, id string) error
	Portfolio(ctx context.Context, employeeID string) error
	Portfolios(ctx context.Context) error
	CreatePortfolio(ctx context.Context) error
	UpdatePortfolio(ctx context.Context, id string) error
	DeletePortfolio(ctx context.Context, id string) error
}

// runREPL starts a simple read–eval–print loop for the Staffolio CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands when not logged in: help, register, login, exit.
// Commands when logged in as an employee: status, portfolio, logout.
// Commands when logged in as a manager additionally: employees,
// employee <id>, portfolios, portfolio <employeeId>, create-portfolio,
// update-portfolio <id>, delete-portfolio <id>.
//
// Role gating here is UI convenience; the guards in the session store run
// before each command and the server re-checks every call.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("staffolio> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			switch {
			case !a.isLoggedIn():
				printlnFn("Available commands: register, login, exit")
			case a.role() == "manager":
				printlnFn("Available commands: status, employees, employee <id>, portfolios, portfolio <employeeId>, create-portfolio, update-portfolio <id>, delete-portfolio <id>, logout, exit")
			default:
				printlnFn("Available commands: status, portfolio, logout, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "status":
			_ = a.Status(ctx)

		case "employees":
			_ = a.Employees(ctx)

		case "employee":
			_ = a.Employee(ctx, arg)

		case "portfolio":
			_ = a.Portfolio(ctx, arg)

		case "portfolios":
			_ = a.Portfolios(ctx)

		case "create-portfolio":
			_ = a.CreatePortfolio(ctx)

		case "update-portfolio":
			_ = a.UpdatePortfolio(ctx, arg)

		case "delete-portfolio":
			_ = a.DeletePortfolio(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
