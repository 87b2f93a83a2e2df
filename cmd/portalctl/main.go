package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"driver-portal-api-server/config"
	"driver-portal-api-server/internal/auth"
	"driver-portal-api-server/internal/capture"
	"driver-portal-api-server/internal/client"
	"driver-portal-api-server/internal/models"
	"driver-portal-api-server/internal/session"
)

const usage = `portalctl - driver registration portal client

Commands:
  login     -email ... -password ...        sign in as an administrator
  logout                                    sign out
  whoami                                    show the signed-in administrator
  register  -left ... -front ... -right ... submit a driver application
  list      [-search ...] [-status ...]     list applications
  show      -id ...                         show one application
  approve   -id ...                         approve an application
  reject    -id ...                         reject an application
`

type app struct {
	cfg     config.Config
	logger  *zap.Logger
	api     *client.Client
	manager *session.Manager
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	_ = godotenv.Load(".env")

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	a := &app{cfg: cfg, logger: logger}
	a.api = client.NewClient(cfg.Client.APIBaseURL, logger)

	store := session.NewFileStore(sessionPath(cfg))
	codec := auth.NewCodec(cfg.JWT.Secret)
	a.manager = session.NewManager(store, a.api, codec, logger)
	a.manager.Resolve()

	var cmdErr error
	switch os.Args[1] {
	case "login":
		cmdErr = a.login(os.Args[2:])
	case "logout":
		a.manager.SignOut()
		fmt.Println("signed out")
	case "whoami":
		cmdErr = a.whoami()
	case "register":
		cmdErr = a.register(os.Args[2:])
	case "list":
		cmdErr = a.list(os.Args[2:])
	case "show":
		cmdErr = a.show(os.Args[2:])
	case "approve":
		cmdErr = a.setStatus(os.Args[2:], models.StatusApproved)
	case "reject":
		cmdErr = a.setStatus(os.Args[2:], models.StatusRejected)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if cmdErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", cmdErr)
		os.Exit(1)
	}
}

func sessionPath(cfg config.Config) string {
	if cfg.Client.SessionFile != "" {
		return cfg.Client.SessionFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portal-session.json"
	}
	return filepath.Join(home, ".driver-portal", "session.json")
}

func (a *app) login(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "administrator email")
	password := fs.String("password", "", "administrator password")
	fs.Parse(args)

	if err := a.manager.SignIn(context.Background(), *email, *password); err != nil {
		return err
	}
	user, _ := a.manager.CurrentUser()
	fmt.Printf("signed in as %s <%s>\n", user.FullName, user.Email)
	return nil
}

func (a *app) whoami() error {
	user, ok := a.manager.CurrentUser()
	if !ok {
		return fmt.Errorf("not signed in")
	}
	fmt.Printf("%s <%s>\n", user.FullName, user.Email)
	if user.LastLogin != nil {
		fmt.Printf("last login: %s\n", user.LastLogin.Local())
	}
	return nil
}

// authorize attaches the persisted credential to the API client, or
// fails when no valid session exists.
func (a *app) authorize() error {
	token, ok := a.manager.CurrentToken()
	if !ok {
		return fmt.Errorf("not signed in (run: portalctl login)")
	}
	a.api.SetBearer(token.Token)
	return nil
}

func (a *app) register(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	fullName := fs.String("name", "", "full name")
	cpf := fs.String("cpf", "", "CPF (11 digits, punctuation allowed)")
	companyName := fs.String("company", "", "company name")
	companyID := fs.String("company-id", "", "company identifier")
	phone := fs.String("phone", "", "phone number")
	email := fs.String("email", "", "email address")
	licensePlate := fs.String("plate", "", "license plate (optional)")
	password := fs.String("password", "", "account password")
	confirm := fs.String("confirm-password", "", "account password, again")
	left := fs.String("left", "", "image file for the left profile pose")
	front := fs.String("front", "", "image file for the front face pose")
	right := fs.String("right", "", "image file for the right profile pose")
	fs.Parse(args)

	if *password != *confirm {
		return fmt.Errorf("passwords do not match")
	}

	// Walk the capture workflow with a file-backed camera, one pose per
	// source image.
	camera := capture.NewFileCamera()
	workflow := capture.NewWorkflow(camera, a.logger)
	sources := map[models.PhotoType]string{
		models.PhotoLeftProfile:  *left,
		models.PhotoFrontFace:    *front,
		models.PhotoRightProfile: *right,
	}
	for _, pose := range models.PhotoTypes {
		camera.SetSource(sources[pose])
		if err := workflow.Begin(context.Background(), pose); err != nil {
			return fmt.Errorf("capture %s: %w", pose, err)
		}
		if err := workflow.Snapshot(); err != nil {
			return fmt.Errorf("capture %s: %w", pose, err)
		}
	}
	if !workflow.Complete() {
		return fmt.Errorf("all three photos are required")
	}

	driver, err := a.api.Register(context.Background(), client.Registration{
		FullName:     *fullName,
		CPF:          *cpf,
		CompanyName:  *companyName,
		CompanyID:    *companyID,
		Phone:        *phone,
		Email:        *email,
		LicensePlate: *licensePlate,
		Password:     *password,
	}, workflow.Photos())
	if err != nil {
		return err
	}

	fmt.Printf("application submitted: %s (status: %s)\n", driver.ID, driver.Status)
	fmt.Println("await administrator approval")
	return nil
}

func (a *app) list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	search := fs.String("search", "", "substring search over name, CPF, email, company")
	status := fs.String("status", "all", "all, pending, approved or rejected")
	fs.Parse(args)

	if err := a.authorize(); err != nil {
		return err
	}

	drivers, err := a.api.ListDrivers(context.Background(), *search, *status)
	if err != nil {
		return err
	}

	if len(drivers) == 0 {
		fmt.Println("no applications found")
		return nil
	}
	for _, d := range drivers {
		fmt.Printf("%s  %-9s  %-24s  %s  %s\n",
			d.ID, d.Status, d.FullName, models.FormatCPF(d.CPF), d.CompanyName)
	}
	return nil
}

func (a *app) show(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.String("id", "", "driver application id")
	fs.Parse(args)

	if err := a.authorize(); err != nil {
		return err
	}

	d, err := a.api.GetDriver(context.Background(), *id)
	if err != nil {
		return err
	}

	fmt.Printf("id:       %s\n", d.ID)
	fmt.Printf("status:   %s\n", d.Status)
	fmt.Printf("name:     %s\n", d.FullName)
	fmt.Printf("cpf:      %s\n", models.FormatCPF(d.CPF))
	fmt.Printf("company:  %s (%s)\n", d.CompanyName, d.CompanyID)
	fmt.Printf("phone:    %s\n", d.Phone)
	fmt.Printf("email:    %s\n", d.Email)
	if d.LicensePlate != "" {
		fmt.Printf("plate:    %s\n", d.LicensePlate)
	}
	fmt.Printf("created:  %s\n", d.CreatedAt.Local())
	for _, photo := range d.Photos {
		fmt.Printf("photo %-13s %s\n", photo.PhotoType+":", photo.PhotoURL)
	}
	return nil
}

func (a *app) setStatus(args []string, status string) error {
	fs := flag.NewFlagSet(status, flag.ExitOnError)
	id := fs.String("id", "", "driver application id")
	fs.Parse(args)

	if err := a.authorize(); err != nil {
		return err
	}

	d, err := a.api.SetStatus(context.Background(), *id, status)
	if err != nil {
		return err
	}
	fmt.Printf("%s is now %s\n", d.ID, d.Status)
	return nil
}
