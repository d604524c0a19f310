// Command createstaff creates a staff account directly in the MySQL store.
// Staff may edit and delete every listing; there is no HTTP endpoint that
// grants the flag.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iliyamo/fitness-center-listings/internal/auth"
	"github.com/iliyamo/fitness-center-listings/internal/config"
	"github.com/iliyamo/fitness-center-listings/internal/database"
	"github.com/iliyamo/fitness-center-listings/internal/model"
	"github.com/iliyamo/fitness-center-listings/internal/repository"
	"github.com/iliyamo/fitness-center-listings/internal/validation"
)

// storeTimeout bounds migration and account creation once the password
// has been entered.
var storeTimeout = 30 * time.Second

var (
	username string
	email    string
)

var rootCmd = &cobra.Command{
	Use:   "createstaff",
	Short: "Create a staff account",
	Long: `Create an account with staff rights in the MySQL store.

The password is read from the terminal without echo, or from the first line
of stdin when stdin is not a terminal.

Examples:
  createstaff --username admin --email admin@example.com
  echo "$ADMIN_PASSWORD" | createstaff -u admin -e admin@example.com`,
	SilenceUsage: true,
	RunE:         runCreateStaff,
}

func init() {
	rootCmd.Flags().StringVarP(&username, "username", "u", "", "login name of the new account")
	rootCmd.Flags().StringVarP(&email, "email", "e", "", "email address of the new account")
	_ = rootCmd.MarkFlagRequired("username")
	_ = rootCmd.MarkFlagRequired("email")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCreateStaff(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.StoreDriver != config.DriverMySQL {
		return errors.New("createstaff needs STORE_DRIVER=mysql; the memory store does not outlive this process")
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	svc := auth.NewService(
		repository.NewUserRepo(db),
		repository.NewTokenRepo(db),
		auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays),
		cfg.BcryptCost,
	)
	create := func(ctx context.Context, in auth.RegisterInput) (*model.User, error) {
		if cfg.DBAutoMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				return nil, err
			}
		}
		return svc.CreateStaff(ctx, in)
	}

	in := auth.RegisterInput{Username: username, Email: email}
	u, err := provision(cmd.Context(), os.Stdin, cmd.ErrOrStderr(), in, create)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			for _, f := range verrs.Fields() {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f, strings.Join(verrs[f], " "))
			}
			return errors.New("account rejected")
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created staff user %q (id %d)\n", u.Username, u.ID)
	return nil
}

// provision prompts for the password, then runs create under a fresh
// storeTimeout deadline.
func provision(ctx context.Context, stdin io.Reader, prompt io.Writer, in auth.RegisterInput,
	create func(context.Context, auth.RegisterInput) (*model.User, error)) (*model.User, error) {
	fmt.Fprint(prompt, "Password: ")
	in.Password = readPassword(stdin)
	fmt.Fprintln(prompt)

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return create(ctx, in)
}

func readPassword(stdin io.Reader) string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	input, _ := bufio.NewReader(stdin).ReadString('\n')
	return strings.TrimRight(input, "\r\n")
}
