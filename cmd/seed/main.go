package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"group-lab/domain"
	"group-lab/services"
	"group-lab/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"./badger-seed"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"INFO"`
	// SEED_WIPE drops every key first so reruns start from a clean slate
	Wipe          bool          `envconfig:"SEED_WIPE" default:"true"`
	TokenDuration time.Duration `envconfig:"AUTH_TOKEN_DURATION" default:"24h"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

// run walks the whole membership workflow once, leaving a database an
// operator can point groupctl or the viewer at.
func run() error {
	// 1. Configuration & Logger
	config, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if config.Wipe {
		if err = db.DropAll(); err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}
	}

	// 3. Services
	users := storage.NewUserDirectory(db)
	groups := services.NewGroupService(storage.NewStore(db, log), users, log)
	accounts := services.NewAccountService(users, config.TokenDuration, log)

	ctx := context.Background()

	// 4. Accounts
	step("Registering accounts")
	alice, _, err := accounts.Register("alice", "alice@example.com", "Al1ce!Passw0rd")
	if err != nil {
		return err
	}
	bob, _, err := accounts.Register("bob", "bob@example.com", "B0bby!Passw0rd")
	if err != nil {
		return err
	}
	carol, _, err := accounts.Register("carol", "carol@example.com", "C4rol!Passw0rd")
	if err != nil {
		return err
	}
	dave, _, err := accounts.Register("dave", "dave@example.com", "D4vey!Passw0rd")
	if err != nil {
		return err
	}

	// 5. Groups
	step("Creating groups")
	general, err := groups.CreateGroup(ctx, "general", "Town square, open to everyone", domain.GroupPublic, alice.ID)
	if err != nil {
		return err
	}
	staff, err := groups.CreateGroup(ctx, "staff", "Staff coordination, invite only", domain.GroupPrivate, alice.ID)
	if err != nil {
		return err
	}

	// 6. Join workflow on the public group
	step("Running the join workflow")
	bobRequest, err := groups.RequestToJoin(ctx, general.ID, bob.ID)
	if err != nil {
		return err
	}
	if _, err = groups.ApproveJoinRequest(ctx, general.ID, bobRequest.ID, alice.ID); err != nil {
		return err
	}

	carolRequest, err := groups.RequestToJoin(ctx, general.ID, carol.ID)
	if err != nil {
		return err
	}
	if _, err = groups.RejectJoinRequest(ctx, general.ID, carolRequest.ID, alice.ID); err != nil {
		return err
	}

	// Dave's request stays PENDING so the viewer has one of each status
	if _, err = groups.RequestToJoin(ctx, general.ID, dave.ID); err != nil {
		return err
	}

	// 7. Private group management
	step("Managing the private group")
	if _, err = groups.AddMemberToPrivateGroup(ctx, staff.ID, alice.ID, bob.ID); err != nil {
		return err
	}
	if _, err = groups.UpdateMemberRole(ctx, staff.ID, alice.ID, bob.ID, domain.RoleAdmin); err != nil {
		return err
	}

	// 8. Summary
	step("Done")
	fmt.Printf(`
Seeded %s

  Users:   alice (owner), bob, carol, dave
  Groups:  general (PUBLIC, id=%s)
           staff   (PRIVATE, id=%s)
  State:   bob approved in general, carol rejected, dave pending
           bob is ADMIN of staff

Try: groupctl requests -group %s -actor %s
`, config.BadgerFilepath, general.ID, staff.ID, general.ID, alice.ID)
	return nil
}

func step(name string) {
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render("  ====== " + name + " ======"))
}
