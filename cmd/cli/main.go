package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	defaultServerURL = "http://localhost:8080"

	// Pause between items when generating in bulk, so a shared QR
	// service is not hammered.
	bulkDelay = 500 * time.Millisecond
)

func main() {
	var serverURL string
	flag.StringVar(&serverURL, "server", defaultServerURL, "Server URL")
	flag.StringVar(&serverURL, "s", defaultServerURL, "Server URL (short)")
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	args := flag.Args()
	client := &client{baseURL: serverURL}

	var err error
	switch args[0] {
	case "label":
		err = cmdLabel(client, args[1:])
	case "tag":
		err = cmdTag(client, args[1:])
	case "document":
		err = cmdDocument(client, args[1:])
	case "batch":
		err = cmdBatch(client, args[1:])
	case "config":
		err = cmdConfig(client, args[1:])
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Label Engine CLI

Usage:
  label-cli [flags] <command>

Flags:
  -s, -server <url>    Server URL (default: %s)

Commands:
  label <domain> [-caption text] [-shop name] [-logo source] [-o file.png]
    Compose a QR service label. Without -o the data URI is printed.

  tag <domain> [-change n] [-o file.png]
    Compose a Code128 service tag.

  document <domain> [-shop name] [-autoprint] [-o file.html]
    Render the printable label document.

  batch -o dir <domain> [domain...]
    Compose one label PNG per domain into the output directory,
    pausing %s between items.

  config get <shop-id>
  config set <shop-id> <patch.json>
  config reset <shop-id>
    Inspect and edit a shop's label configuration.
`, defaultServerURL, bulkDelay)
}

type client struct {
	baseURL string
}

func (c *client) postJSON(path string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp, err := http.Post(c.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, out)
	}
	return out, nil
}

func (c *client) get(path string) ([]byte, error) {
	resp, err := http.Get(c.baseURL + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, out)
	}
	return out, nil
}

func (c *client) send(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, out)
	}
	return out, nil
}

func cmdLabel(c *client, args []string) error {
	fs := flag.NewFlagSet("label", flag.ExitOnError)
	caption := fs.String("caption", "", "Primary caption text")
	shop := fs.String("shop", "", "Shop name line")
	logo := fs.String("logo", "", "Logo source (data URI, URL, or file path)")
	out := fs.String("o", "", "Output PNG file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("label requires exactly one domain")
	}
	domain := fs.Arg(0)

	body := map[string]interface{}{
		"vehicle_id":  domain,
		"logo_source": *logo,
		"style": map[string]interface{}{
			"primary_caption": *caption,
			"shop_name":       *shop,
		},
	}

	resp, err := c.postJSON("/labels", body)
	if err != nil {
		return err
	}

	var parsed struct {
		Image string `json:"image"`
		Mode  string `json:"mode"`
	}
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return err
	}

	if *out == "" {
		fmt.Println(parsed.Image)
		return nil
	}

	return writeDataURI(parsed.Image, *out)
}

func cmdTag(c *client, args []string) error {
	fs := flag.NewFlagSet("tag", flag.ExitOnError)
	change := fs.Int("change", 0, "Change number")
	out := fs.String("o", "", "Output PNG file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("tag requires exactly one domain")
	}

	path := fmt.Sprintf("/labels/%s/tag.png", fs.Arg(0))
	if *change > 0 {
		path += fmt.Sprintf("?change=%d", *change)
	}

	png, err := c.get(path)
	if err != nil {
		return err
	}

	if *out == "" {
		return fmt.Errorf("tag requires -o file.png")
	}
	if err := os.WriteFile(*out, png, 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d bytes)\n", *out, len(png))
	return nil
}

func cmdDocument(c *client, args []string) error {
	fs := flag.NewFlagSet("document", flag.ExitOnError)
	shop := fs.String("shop", "", "Shop name for the document header")
	autoprint := fs.Bool("autoprint", false, "Arm the browser print trigger")
	out := fs.String("o", "", "Output HTML file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("document requires exactly one domain")
	}

	path := "/documents/label"
	if *autoprint {
		path += "?autoprint=true"
	}

	html, err := c.postJSON(path, map[string]interface{}{
		"record": map[string]interface{}{"vehicle_id": fs.Arg(0)},
		"shop":   map[string]interface{}{"name": *shop},
	})
	if err != nil {
		return err
	}

	if *out == "" {
		fmt.Println(string(html))
		return nil
	}
	if err := os.WriteFile(*out, html, 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", *out)
	return nil
}

func cmdBatch(c *client, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	out := fs.String("o", "", "Output directory")
	caption := fs.String("caption", "", "Primary caption for every label")
	shop := fs.String("shop", "", "Shop name for every label")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("batch requires at least one domain")
	}
	if *out == "" {
		return fmt.Errorf("batch requires -o dir")
	}

	if err := os.MkdirAll(*out, 0755); err != nil {
		return err
	}

	for i, domain := range fs.Args() {
		if i > 0 {
			time.Sleep(bulkDelay)
		}

		resp, err := c.postJSON("/labels", map[string]interface{}{
			"vehicle_id": domain,
			"style": map[string]interface{}{
				"primary_caption": *caption,
				"shop_name":       *shop,
			},
		})
		if err != nil {
			return fmt.Errorf("%s: %w", domain, err)
		}

		var parsed struct {
			Image string `json:"image"`
		}
		if err := json.Unmarshal(resp, &parsed); err != nil {
			return err
		}

		file := fmt.Sprintf("%s/%s.png", *out, domain)
		if err := writeDataURI(parsed.Image, file); err != nil {
			return fmt.Errorf("%s: %w", domain, err)
		}
		fmt.Printf("✅ %s\n", file)
	}

	return nil
}

func cmdConfig(c *client, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("config requires a subcommand and shop id")
	}

	switch args[0] {
	case "get":
		out, err := c.get(fmt.Sprintf("/shops/%s/config", args[1]))
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	case "set":
		if len(args) < 3 {
			return fmt.Errorf("config set requires <shop-id> <patch.json>")
		}
		patch, err := os.ReadFile(args[2])
		if err != nil {
			return err
		}
		out, err := c.send(http.MethodPut, fmt.Sprintf("/shops/%s/config", args[1]), patch)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	case "reset":
		out, err := c.postJSON(fmt.Sprintf("/shops/%s/config/reset", args[1]), map[string]interface{}{})
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s", args[0])
	}
}

func writeDataURI(uri, path string) error {
	const prefix = "data:image/png;base64,"
	if len(uri) <= len(prefix) || uri[:len(prefix)] != prefix {
		return fmt.Errorf("response is not a PNG data URI")
	}

	png, err := base64.StdEncoding.DecodeString(uri[len(prefix):])
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d bytes)\n", path, len(png))
	return nil
}
