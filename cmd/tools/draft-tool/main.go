// cmd/tools/draft-tool/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"bursary-portal/internal/common/config"
	"bursary-portal/internal/common/database"
	"bursary-portal/internal/common/logger"
	"bursary-portal/internal/models"
	persistdraft "bursary-portal/internal/wizard/persist-draft"
	stepcompletion "bursary-portal/internal/wizard/step-completion"
	validatedocuments "bursary-portal/internal/wizard/validate-documents"
	validatefields "bursary-portal/internal/wizard/validate-fields"
	"bursary-portal/pkg/catalog"
)

var configPath string

func main() {
	sessionsCmd := flag.NewFlagSet("sessions", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	clearCmd := flag.NewFlagSet("clear", flag.ExitOnError)
	catalogCmd := flag.NewFlagSet("catalog", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{sessionsCmd, showCmd, validateCmd, clearCmd} {
		fs.StringVar(&configPath, "config", "", "Path to config file (default: configs/config.yaml)")
	}
	showSession := showCmd.String("session", "", "Session ID")
	validateSession := validateCmd.String("session", "", "Session ID")
	clearSession := clearCmd.String("session", "", "Session ID")
	clearToken := clearCmd.Bool("token", false, "Also remove the stored bearer token")
	catalogOut := catalogCmd.String("out", "", "Write the catalog to this file (default: stdout)")
	catalogCheck := catalogCmd.String("check", "", "Compare the live catalog with this file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "sessions":
		sessionsCmd.Parse(os.Args[2:])
		ids, err := openBackend().Sessions(ctx)
		exitOn(err, "listing sessions")
		for _, id := range ids {
			fmt.Println(id)
		}

	case "show":
		showCmd.Parse(os.Args[2:])
		requireSession(showCmd, *showSession)
		raw, err := adapterFor(*showSession).Raw(ctx)
		exitOn(err, "reading draft")
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := raw[k]
			if k == persistdraft.KeyToken {
				v = "<redacted>"
			}
			fmt.Printf("%s = %s\n", k, v)
		}

	case "validate":
		validateCmd.Parse(os.Args[2:])
		requireSession(validateCmd, *validateSession)
		if !validateDraft(ctx, adapterFor(*validateSession)) {
			os.Exit(2)
		}

	case "clear":
		clearCmd.Parse(os.Args[2:])
		requireSession(clearCmd, *clearSession)
		a := adapterFor(*clearSession)
		exitOn(a.Purge(ctx), "purging draft")
		if *clearToken {
			exitOn(a.ClearToken(ctx), "removing token")
		}
		fmt.Printf("Cleared draft for session %s\n", *clearSession)

	case "catalog":
		catalogCmd.Parse(os.Args[2:])
		live := stepcompletion.Catalog(0, time.Now().UTC().Format("2006-01-02"))
		if *catalogCheck != "" {
			stored, err := catalog.LoadCatalog(*catalogCheck)
			exitOn(err, "loading catalog")
			if diff := catalog.Diff(stored, live); len(diff) > 0 {
				for _, d := range diff {
					fmt.Println(d)
				}
				os.Exit(2)
			}
			fmt.Println("Catalog is up to date.")
			return
		}
		if *catalogOut != "" {
			exitOn(catalog.SaveCatalog(*catalogOut, live), "writing catalog")
			fmt.Printf("Wrote catalog to %s\n", *catalogOut)
			return
		}
		data, _ := json.MarshalIndent(live, "", "  ")
		fmt.Println(string(data))

	default:
		help()
		os.Exit(1)
	}
}

// validateDraft runs the step validators over the stored draft. Documents
// are never stored, so the documents step is skipped.
func validateDraft(ctx context.Context, a *persistdraft.Adapter) bool {
	d := a.LoadDraft(ctx)
	fields := validatefields.NewValidator(nil)
	tracker := stepcompletion.NewTracker(fields, validatedocuments.NewValidator(nil))
	snap := stepcompletion.Snapshot{FormData: d.FormData, Subjects: d.Subjects, Documents: models.NewDocuments()}

	fmt.Printf("Active step: %d (%s)\n", int(d.ActiveStep), d.ActiveStep.Name())
	ok := true
	for step := models.StepPersonal; step < models.StepDocuments; step++ {
		errs := tracker.ValidateStep(step, snap)
		if len(errs) == 0 {
			fmt.Printf("✓ %s\n", step.Name())
			continue
		}
		ok = false
		fmt.Printf("✗ %s\n", step.Name())
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("    %s: %s\n", k, errs[k])
		}
	}
	return ok
}

func openBackend() persistdraft.Backend {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	exitOn(err, "loading config")

	if cfg.Storage.Driver != config.DriverRedis {
		fmt.Println("Error: drafts are only inspectable with the redis storage driver.")
		os.Exit(1)
	}
	client, err := database.NewRedis(cfg.Database.Redis)
	exitOn(err, "connecting to redis")
	return persistdraft.NewRedisBackend(client, persistdraft.LoadConfig(cfg))
}

func adapterFor(sessionID string) *persistdraft.Adapter {
	return persistdraft.NewAdapter(openBackend().Session(sessionID), logger.NewStructured("warn", "console"))
}

func requireSession(fs *flag.FlagSet, id string) {
	if id == "" {
		fmt.Println("Error: -session is required.")
		fs.Usage()
		os.Exit(1)
	}
}

func exitOn(err error, what string) {
	if err != nil {
		fmt.Printf("Error %s: %v\n", what, err)
		os.Exit(1)
	}
}

func help() {
	fmt.Println("Usage: draft-tool <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  sessions                      List sessions with a stored draft")
	fmt.Println("  show -session ID              Print the stored draft keys")
	fmt.Println("  validate -session ID          Run the step validators over a draft")
	fmt.Println("  clear -session ID [-token]    Remove a draft")
	fmt.Println("  catalog [-out F | -check F]   Export or verify the field catalog")
}
