package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"group-lab/auth"
	"group-lab/domain"
	"group-lab/errors"
	"group-lab/internal"
	"group-lab/services"
	"group-lab/storage"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const timeLayout = "02 Jan 06 15:04"

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "groupctl: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, dispatches the requested command, and
// centralizes error reporting so deferred cleanup always executes.
func run() (int, error) {
	if len(os.Args) < 2 {
		printUsage()
		return exitConfig, nil
	}
	command := os.Args[1]
	if command == "help" {
		printUsage()
		return exitOK, nil
	}

	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	// 3. Services
	users := storage.NewUserDirectory(db)
	app := &app{
		groups:   services.NewGroupService(storage.NewStore(db, log), users, log),
		accounts: services.NewAccountService(users, config.AuthTokenDuration, log),
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = app.dispatch(ctx, command, os.Args[2:]); err != nil {
		return exitRuntime, fmt.Errorf("[%s] %w", errors.KindOf(err), err)
	}
	return exitOK, nil
}

type app struct {
	groups   services.IGroupService
	accounts services.IAccountService
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.register(args)
	case "login":
		return a.login(args)
	case "whoami":
		return a.whoami(args)
	case "create-group":
		return a.createGroup(ctx, args)
	case "groups":
		return a.listGroups(ctx, args)
	case "join":
		return a.join(ctx, args)
	case "requests":
		return a.listRequests(ctx, args)
	case "approve":
		return a.approve(ctx, args)
	case "reject":
		return a.reject(ctx, args)
	case "add-member":
		return a.addMember(ctx, args)
	case "set-role":
		return a.setRole(ctx, args)
	case "remove":
		return a.remove(ctx, args)
	case "leave":
		return a.leave(ctx, args)
	case "members":
		return a.members(ctx, args)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) register(args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("username", "", "display name")
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, token, err := a.accounts.Register(*username, *email, *password)
	if err != nil {
		return err
	}

	fmt.Println(banner("  ====== Account created ======"))
	table := newTable([]string{"ID", "Username", "Email"})
	table.Append([]string{user.ID, user.Username, user.Email})
	table.Render()
	fmt.Printf("\nToken: %s\n", token)
	return nil
}

func (a *app) login(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := a.accounts.Login(*email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Token: %s\n", token)
	return nil
}

func (a *app) whoami(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	token := fs.String("token", "", "session token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	claims, err := auth.ValidateToken(*token)
	if err != nil {
		return err
	}

	table := newTable([]string{"User ID", "Roles", "Expires"})
	table.Append([]string{
		claims.UserID,
		strings.Join(claims.Roles, ","),
		claims.ExpiresAt.Format(timeLayout),
	})
	table.Render()
	return nil
}

func (a *app) createGroup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-group", flag.ContinueOnError)
	name := fs.String("name", "", "group name")
	description := fs.String("description", "", "group description")
	groupType := fs.String("type", "PUBLIC", "PUBLIC or PRIVATE")
	owner := fs.String("owner", "", "owner user id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	group, err := a.groups.CreateGroup(ctx, *name, *description, domain.GroupType(strings.ToUpper(*groupType)), *owner)
	if err != nil {
		return err
	}

	fmt.Println(banner("  ====== Group created ======"))
	printGroups(group)
	return nil
}

func (a *app) listGroups(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("groups", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	groups, err := a.groups.ListGroups(ctx)
	if err != nil {
		return err
	}
	printGroups(groups...)
	return nil
}

func (a *app) join(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ContinueOnError)
	group := fs.String("group", "", "group id")
	user := fs.String("user", "", "requesting user id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	request, err := a.groups.RequestToJoin(ctx, *group, *user)
	if err != nil {
		return err
	}

	fmt.Println(banner("  ====== Join request filed ======"))
	printRequests(request)
	return nil
}

func (a *app) listRequests(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("requests", flag.ContinueOnError)
	group := fs.String("group", "", "group id")
	actor := fs.String("actor", "", "acting admin user id")
	statusFlag := fs.String("status", "", "PENDING, APPROVED or REJECTED (empty lists all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var status *domain.RequestStatus
	if *statusFlag != "" {
		parsed := domain.RequestStatus(strings.ToUpper(*statusFlag))
		switch parsed {
		case domain.RequestPending, domain.RequestApproved, domain.RequestRejected:
			status = &parsed
		default:
			return fmt.Errorf("unknown status %q", *statusFlag)
		}
	}

	requests, err := a.groups.ListJoinRequests(ctx, *group, *actor, status)
	if err != nil {
		return err
	}
	printRequests(requests...)
	return nil
}

func (a *app) approve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("approve", flag.ContinueOnError)
	group := fs.String("group", "", "group id")
	request := fs.String("request", "", "join request id")
	actor := fs.String("actor", "", "acting admin user id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	membership, err := a.groups.ApproveJoinRequest(ctx, *group, *request, *actor)
	if err != nil {
		return err
	}

	fmt.Println(banner("  ====== Request approved ======"))
	printMembers(membership)
	return nil
}

func (a *app) reject(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reject", flag.ContinueOnError)
	group := fs.String("group", "", "group id")
	request := fs.String("request", "", "join request id")
	actor := fs.String("actor", "", "acting admin user id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rejected, err := a.groups.RejectJoinRequest(ctx, *group, *request, *actor)
	if err != nil {
		return err
	}

	fmt.Println(banner("  ====== Request rejected ======"))
	printRequests(rejected)
	return nil
}

func (a *app) addMember(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-member", flag.ContinueOnError)
	group := fs.String("group", "", "private group id")
	actor := fs.String("actor", "", "acting admin user id")
	user := fs.String("user", "", "user id to add")
	if err := fs.Parse(args); err != nil {
		return err
	}

	membership, err := a.groups.AddMemberToPrivateGroup(ctx, *group, *actor, *user)
	if err != nil {
		return err
	}

	fmt.Println(banner("  ====== Member added ======"))
	printMembers(membership)
	return nil
}

func (a *app) setRole(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-role", flag.ContinueOnError)
	group := fs.String("group", "", "group id")
	actor := fs.String("actor", "", "acting admin user id")
	user := fs.String("user", "", "target user id")
	role := fs.String("role", "", "ADMIN or MEMBER")
	if err := fs.Parse(args); err != nil {
		return err
	}

	membership, err := a.groups.UpdateMemberRole(ctx, *group, *actor, *user, domain.Role(strings.ToUpper(*role)))
	if err != nil {
		return err
	}

	fmt.Println(banner("  ====== Role updated ======"))
	printMembers(membership)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	group := fs.String("group", "", "group id")
	actor := fs.String("actor", "", "acting user id")
	user := fs.String("user", "", "member user id to remove")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.groups.RemoveMember(ctx, *group, *actor, *user); err != nil {
		return err
	}
	fmt.Printf("Removed %s from %s\n", *user, *group)
	return nil
}

func (a *app) leave(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("leave", flag.ContinueOnError)
	group := fs.String("group", "", "group id")
	user := fs.String("user", "", "leaving user id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	left, err := a.groups.LeaveGroup(ctx, *group, *user)
	if err != nil {
		return err
	}
	fmt.Printf("Left group %q\n", left.Name)
	return nil
}

func (a *app) members(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("members", flag.ContinueOnError)
	group := fs.String("group", "", "group id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	members, err := a.groups.GroupMembers(ctx, *group)
	if err != nil {
		return err
	}
	printMembers(members...)
	return nil
}

func printGroups(groups ...domain.Group) {
	table := newTable([]string{"ID", "Name", "Description", "Type", "Owner", "Created"})
	for _, g := range groups {
		table.Append([]string{g.ID, g.Name, g.Description, string(g.Type), g.OwnerID, g.CreatedAt.Format(timeLayout)})
	}
	table.Render()
}

func printMembers(members ...domain.Membership) {
	table := newTable([]string{"Group", "User", "Role", "Joined"})
	for _, m := range members {
		table.Append([]string{m.GroupID, m.UserID, string(m.Role), m.JoinedAt.Format(timeLayout)})
	}
	table.Render()
}

func printRequests(requests ...domain.JoinRequest) {
	table := newTable([]string{"ID", "User", "Status", "Created", "Resolved"})
	for _, r := range requests {
		resolved := "-"
		if !r.ResolvedAt.IsZero() {
			resolved = r.ResolvedAt.Format(timeLayout)
		}
		table.Append([]string{r.ID, r.UserID, string(r.Status), r.CreatedAt.Format(timeLayout), resolved})
	}
	table.Render()
}

func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func banner(s string) string {
	return color.New(color.BgBlack, color.FgGreen).Render(s)
}

func printUsage() {
	fmt.Print(`groupctl - group membership administration

Usage: groupctl <command> [flags]

Accounts:
  register     -username -email -password    Create an account
  login        -email -password              Obtain a session token
  whoami       -token                        Show the token's claims

Groups:
  create-group -name -type -owner [-description]
                                             Create a PUBLIC or PRIVATE group
  groups                                     List every group
  members      -group                        List a group's members

Join workflow:
  join         -group -user                  File a join request (public groups)
  requests     -group -actor [-status]       List join requests (admins only)
  approve      -group -request -actor        Approve a pending request
  reject       -group -request -actor        Reject a pending request

Membership:
  add-member   -group -actor -user           Add a user to a private group
  set-role     -group -actor -user -role     Promote or demote a member
  remove       -group -actor -user           Remove a member (self or admin)
  leave        -group -user                  Leave a group (owners cannot)

Environment: BADGER_FILEPATH (required), LOG_LEVEL, AUTH_TOKEN_DURATION
`)
}
