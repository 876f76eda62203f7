package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"tryon-service/pkg/identity"
	"tryon-service/pkg/tryon"
)

const usage = `Usage: tryon-client [flags] <command> [args]

Commands:
  signup <email> <password>         create an account and sign in
  login <email> <password>          sign in with email and password
  login-idp <provider> <credential> sign in with a federated provider token
  logout                            discard the saved session
  whoami                            show the backend profile
  health                            check backend liveness
  mannequin get                     show the current mannequin image
  mannequin upload <file>           upload a mannequin image
  mannequin delete                  delete the mannequin image
  wardrobe list [top|bottom]        list wardrobe items
  wardrobe upload <top|bottom> <file>  upload a wardrobe item
  wardrobe delete <itemId>          delete a wardrobe item
`

// Fallback for image types the platform mime table may not know.
var extraContentTypes = map[string]string{
	".heic": "image/heic",
	".heif": "image/heif",
	".webp": "image/webp",
}

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("TRYON_API_URL", "http://localhost:8080"), "asset service base URL")
	identityURL := flag.String("identity", envOr("TRYON_IDENTITY_URL", "http://localhost:9099"), "identity provider base URL")
	apiKey := flag.String("key", os.Getenv("TRYON_IDENTITY_KEY"), "identity provider API key")
	sessionFile := flag.String("session-file", defaultSessionFile(), "path for the persisted refresh token")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	provider := identity.New(identity.Config{BaseURL: *identityURL, APIKey: *apiKey})
	ctx := context.Background()

	session := restoreSession(ctx, provider, *sessionFile)
	client := tryon.NewClient(*apiURL, session)

	switch args[0] {
	case "signup", "login":
		if len(args) != 3 {
			fatalUsage()
		}
		var (
			s   *identity.Session
			err error
		)
		if args[0] == "signup" {
			s, err = provider.SignUp(ctx, args[1], args[2])
		} else {
			s, err = provider.SignIn(ctx, args[1], args[2])
		}
		if err != nil {
			log.Fatalf("sign-in failed: %v", err)
		}
		saveSession(*sessionFile, s)
		fmt.Printf("signed in as %s (%s)\n", s.Email, s.UID)

	case "login-idp":
		if len(args) != 3 {
			fatalUsage()
		}
		s, err := provider.SignInWithProvider(ctx, args[1], args[2])
		if err != nil {
			log.Fatalf("federated sign-in failed: %v", err)
		}
		saveSession(*sessionFile, s)
		fmt.Printf("signed in as %s (%s)\n", s.Email, s.UID)

	case "logout":
		_ = provider.SignOut(ctx)
		_ = os.Remove(*sessionFile)
		fmt.Println("signed out")

	case "health":
		status, err := client.Health(ctx)
		if err != nil {
			log.Fatalf("health check failed: %v", err)
		}
		fmt.Printf("%s: %s\n", status.Status, status.Message)

	case "whoami":
		requireSession(session)
		profile, err := client.CurrentUser(ctx)
		if err != nil {
			log.Fatalf("whoami failed: %v", err)
		}
		fmt.Printf("id=%d email=%s uid=%s joined=%s\n", profile.ID, profile.Email, profile.ProviderUID, profile.CreatedAt.Format("2006-01-02"))

	case "mannequin":
		requireSession(session)
		runMannequin(ctx, client, args[1:])

	case "wardrobe":
		requireSession(session)
		runWardrobe(ctx, client, args[1:])

	default:
		fatalUsage()
	}
}

func runMannequin(ctx context.Context, client *tryon.Client, args []string) {
	if len(args) == 0 {
		fatalUsage()
	}

	switch args[0] {
	case "get":
		mannequin, err := client.GetMannequin(ctx)
		if err != nil {
			log.Fatalf("fetch failed: %v", err)
		}
		if mannequin.URL == nil {
			fmt.Println("no mannequin image uploaded")
			return
		}
		fmt.Printf("url: %s\nuploaded: %s\n", *mannequin.URL, mannequin.UploadedAt)

	case "upload":
		if len(args) != 2 {
			fatalUsage()
		}
		asset := uploadFile(ctx, client, args[1], tryon.MannequinClass())
		fmt.Printf("uploaded mannequin: %s (at %s)\n", asset.URL, asset.UploadedAt)

	case "delete":
		if err := client.DeleteMannequin(ctx); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Println("mannequin image deleted")

	default:
		fatalUsage()
	}
}

func runWardrobe(ctx context.Context, client *tryon.Client, args []string) {
	if len(args) == 0 {
		fatalUsage()
	}

	switch args[0] {
	case "list":
		category := tryon.Category("")
		if len(args) > 1 {
			category = tryon.Category(args[1])
		}
		items, err := client.ListWardrobe(ctx, category)
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		if len(items) == 0 {
			fmt.Println("wardrobe is empty")
			return
		}
		for _, item := range items {
			fmt.Printf("%s  %-6s  %s  %s\n", item.ID, item.Category, item.UploadedAt.Format("2006-01-02 15:04"), item.URL)
		}

	case "upload":
		if len(args) != 3 {
			fatalUsage()
		}
		asset := uploadFile(ctx, client, args[2], tryon.WardrobeClass(tryon.Category(args[1])))
		fmt.Printf("uploaded %s item %s: %s\n", asset.Category, asset.ID, asset.URL)

	case "delete":
		if len(args) != 2 {
			fatalUsage()
		}
		if err := client.DeleteWardrobeItem(ctx, args[1]); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Println("item deleted")

	default:
		fatalUsage()
	}
}

func uploadFile(ctx context.Context, client *tryon.Client, path string, class tryon.AssetClass) *tryon.Asset {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("cannot open %s: %v", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Fatalf("cannot stat %s: %v", path, err)
	}

	asset, err := client.UploadAsset(ctx, tryon.File{
		Name:        filepath.Base(path),
		ContentType: contentTypeFor(path),
		Size:        info.Size(),
		Body:        f,
	}, class)
	if err != nil {
		if failure, ok := tryon.AsFailure(err); ok {
			log.Fatalf("upload failed (%s): %s", failure.Kind, failure.Message)
		}
		log.Fatalf("upload failed: %v", err)
	}
	return asset
}

func contentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := extraContentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func restoreSession(ctx context.Context, provider *identity.Client, sessionFile string) *identity.Session {
	raw, err := os.ReadFile(sessionFile)
	if err != nil {
		provider.ResolveAnonymous()
		return nil
	}

	session, err := provider.Restore(ctx, strings.TrimSpace(string(raw)))
	if err != nil {
		log.Printf("saved session rejected, please login again: %v", err)
		return nil
	}
	return session
}

func saveSession(sessionFile string, session *identity.Session) {
	if err := os.WriteFile(sessionFile, []byte(session.RefreshToken()), 0o600); err != nil {
		log.Printf("warning: failed to persist session: %v", err)
	}
}

func requireSession(session *identity.Session) {
	if session == nil {
		log.Fatal("not signed in, run: tryon-client login <email> <password>")
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tryon-session"
	}
	return filepath.Join(home, ".tryon-session")
}

func envOr(name, fallback string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return fallback
}

func fatalUsage() {
	fmt.Fprint(os.Stderr, usage)
	os.Exit(2)
}
