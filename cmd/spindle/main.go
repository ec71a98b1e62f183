// Command spindle posts a local thread document to X as a reply chain.
//
// Subcommands:
//
//	spindle post <document> [--dry-run] [--profile name]
//	spindle profile add|use|list|rm
//	spindle verify
//	spindle import <url|file> [-o out]
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dghubble/go-twitter/twitter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"spindle/internal/config"
	"spindle/internal/document"
	"spindle/internal/htmlimport"
	"spindle/internal/logging"
	"spindle/internal/profile"
	"spindle/internal/thread"
	"spindle/internal/validate"
	"spindle/internal/xapi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "spindle:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Verbose)

	switch os.Args[1] {
	case "post":
		err = runPost(cfg, os.Args[2:])
	case "profile":
		err = runProfile(cfg, os.Args[2:])
	case "verify":
		err = runVerify(cfg)
	case "import":
		err = runImport(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "spindle: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "spindle:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage:
  spindle post <document> [--dry-run] [--profile name]
  spindle profile add --name N --consumer-key K --consumer-secret S --access-token T --access-secret X
  spindle profile use <name>
  spindle profile list
  spindle profile rm <name>
  spindle verify
  spindle import <url|file> [-o out]
`)
}

func runPost(cfg *config.Config, args []string) error {
	fs := pflag.NewFlagSet("post", pflag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "parse and validate only, no network calls")
	profName := fs.String("profile", "", "post with this profile instead of the active one")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: spindle post <document>")
	}

	doc, err := document.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	if *dryRun {
		return dryRunPreview(doc)
	}

	store, err := profile.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	prof, err := pickProfile(ctx, store, *profName, doc.Meta.Profile)
	if err != nil {
		return err
	}
	log.WithField("profile", prof.Name).Debug("posting")

	client := xapi.New(prof.Creds.HTTPClient(ctx), cfg.UploadURL, cfg.TweetURL)
	chain, err := thread.Run(ctx, client, doc)
	if err != nil {
		return err
	}
	if err := store.RecordThread(ctx, doc.Path, chain.RootID, chain.FinalID, chain.Posts); err != nil {
		log.WithError(err).Warn("thread published but not archived")
	}
	fmt.Printf("published %d posts, root id %s\n", chain.Posts, chain.RootID)
	return nil
}

// pickProfile resolves which credentials to post with: the --profile flag
// wins, then the document's front matter, then the active profile.
func pickProfile(ctx context.Context, store *profile.Store, flagName, metaName string) (*profile.Profile, error) {
	switch {
	case flagName != "":
		return store.Get(ctx, flagName)
	case metaName != "":
		return store.Get(ctx, metaName)
	default:
		return store.Active(ctx)
	}
}

func dryRunPreview(doc *document.Document) error {
	if err := validate.Document(doc.Contents); err != nil {
		return err
	}
	if _, err := validate.LoadImages(doc.Contents); err != nil {
		return err
	}
	fmt.Println("dry run: validation passed, no network calls made")
	for i, c := range doc.Contents {
		fmt.Printf("--- post %d ---\n%s\n", i, c.Text)
		for _, img := range c.Images {
			fmt.Printf("  image: %s\n", img)
		}
	}
	return nil
}

func runProfile(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: spindle profile add|use|list|rm")
	}
	store, err := profile.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := context.Background()

	switch args[0] {
	case "add":
		fs := pflag.NewFlagSet("profile add", pflag.ContinueOnError)
		name := fs.String("name", "", "profile name")
		ck := fs.String("consumer-key", "", "OAuth1 consumer key")
		cs := fs.String("consumer-secret", "", "OAuth1 consumer secret")
		at := fs.String("access-token", "", "OAuth1 access token")
		as := fs.String("access-secret", "", "OAuth1 access secret")
		use := fs.Bool("use", false, "make this the active profile")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		for flag, v := range map[string]string{
			"--name": *name, "--consumer-key": *ck, "--consumer-secret": *cs,
			"--access-token": *at, "--access-secret": *as,
		} {
			if v == "" {
				return fmt.Errorf("missing required flag %s", flag)
			}
		}
		return store.Add(ctx, profile.Profile{
			Name:   *name,
			Active: *use,
			Creds: xapi.Credentials{
				ConsumerKey:    *ck,
				ConsumerSecret: *cs,
				AccessToken:    *at,
				AccessSecret:   *as,
			},
		})
	case "use":
		if len(args) != 2 {
			return fmt.Errorf("usage: spindle profile use <name>")
		}
		return store.Activate(ctx, args[1])
	case "list":
		profiles, err := store.List(ctx)
		if err != nil {
			return err
		}
		for _, p := range profiles {
			marker := " "
			if p.Active {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, p.Name)
		}
		return nil
	case "rm":
		if len(args) != 2 {
			return fmt.Errorf("usage: spindle profile rm <name>")
		}
		return store.Remove(ctx, args[1])
	default:
		return fmt.Errorf("unknown profile command %q", args[0])
	}
}

// runVerify checks that the active profile's credentials are accepted by
// the service before the user trusts them with a whole thread.
func runVerify(cfg *config.Config) error {
	store, err := profile.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := context.Background()

	prof, err := store.Active(ctx)
	if err != nil {
		return err
	}
	client := twitter.NewClient(prof.Creds.HTTPClient(ctx))
	user, _, err := client.Accounts.VerifyCredentials(&twitter.AccountVerifyParams{
		SkipStatus:   twitter.Bool(true),
		IncludeEmail: twitter.Bool(false),
	})
	if err != nil {
		return fmt.Errorf("verify %q: %w", prof.Name, err)
	}
	fmt.Printf("profile %q is signed in as @%s\n", prof.Name, user.ScreenName)
	return nil
}

func runImport(args []string) error {
	fs := pflag.NewFlagSet("import", pflag.ContinueOnError)
	out := fs.StringP("out", "o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: spindle import <url|file>")
	}

	src := fs.Arg(0)
	var r io.ReadCloser
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		resp, err := http.Get(src)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("fetch %s: %s", src, resp.Status)
		}
		r = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		r = f
	}
	defer r.Close()

	text, err := htmlimport.Convert(r)
	if err != nil {
		return err
	}
	if *out == "" {
		fmt.Print(text)
		return nil
	}
	return os.WriteFile(*out, []byte(text), 0644)
}
