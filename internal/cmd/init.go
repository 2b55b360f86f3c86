package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/qbox-app/qboxup/internal/config"
	"github.com/qbox-app/qboxup/internal/templates"
)

const previewLines = 20

type initOptions struct {
	template string
	path     string
	force    bool
	// askPath prompts for the location when no path was given.
	askPath bool
}

func newInitCmd() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a qboxup config file from a template",
		Long: `Create a qboxup config file from a built-in or remote template.

Available templates:
  minimal   - Repository and log level only
  full      - Every option with its default
  server    - Download redirect service, updates off

Examples:
  qboxup init                                  # Interactive mode
  qboxup init --template=full
  qboxup init --template=https://...           # Remote template
  qboxup init --template=server --path ./qboxup.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.path == "" {
				opts.path = configPath
			}
			opts.askPath = opts.path == "" && !quiet
			return runInit(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "Template name or URL")
	cmd.Flags().StringVarP(&opts.path, "path", "p", "", "Where to write the config (default: --config or the user config dir)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing config file")

	_ = cmd.RegisterFlagCompletionFunc("template", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var completions []string
		for _, name := range templates.List() {
			completions = append(completions, fmt.Sprintf("%s\t%s", name, templates.GetDescription(name)))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// runInit writes a config file from a template.
func runInit(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, opts initOptions) error {
	reader := bufio.NewReader(stdin)

	outputPath := opts.path
	if outputPath == "" {
		outputPath = defaultConfigPath()
	}
	outputPath = expandHomePath(outputPath)

	if opts.template == "" {
		selected, err := selectTemplateInteractive(reader, stdout)
		if err != nil {
			return err
		}
		opts.template = selected
	}

	var (
		content []byte
		source  string
	)
	if isURL(opts.template) {
		var err error
		content, err = fetchRemoteTemplate(ctx, opts.template)
		if err != nil {
			return fmt.Errorf("fetch template: %w", err)
		}
		source = "custom"
	} else {
		tmpl, err := templates.GetExpanded(opts.template)
		if err != nil {
			return fmt.Errorf("load template: %w", err)
		}
		content = tmpl.Content
		source = tmpl.Name
	}

	if err := validateTemplateContent(content); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	if !quiet {
		printPreview(stdout, source, content)
	}

	if opts.askPath {
		_, _ = fmt.Fprintf(stdout, "\nWhere should the config be written? [%s]: ", outputPath)
		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read input: %w", err)
		}
		if answer = strings.TrimSpace(answer); answer != "" {
			outputPath = expandHomePath(answer)
		}
	}

	if _, err := os.Stat(outputPath); err == nil && !opts.force {
		_, _ = fmt.Fprintf(stderr, "Config already exists at %s\n", outputPath)
		_, _ = fmt.Fprint(stdout, "Overwrite? [y/N]: ")
		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read input: %w", err)
		}
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			_, _ = fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	parentDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(parentDir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", parentDir, err)
	}
	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "\nCreated %s\n", outputPath)
	_, _ = fmt.Fprintln(stdout, "\nNext steps:")
	_, _ = fmt.Fprintln(stdout, "  1. Edit the config to point at your repository")
	_, _ = fmt.Fprintln(stdout, "  2. Run 'qboxup latest' to check the download for this machine")
	_, _ = fmt.Fprintln(stdout, "  3. Run 'qboxup serve' to start the redirect service")

	return nil
}

func printPreview(w io.Writer, name string, content []byte) {
	_, _ = fmt.Fprintf(w, "\nPreview of '%s' template:\n", name)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 40))
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) <= previewLines {
		_, _ = fmt.Fprintln(w, strings.Join(lines, "\n"))
	} else {
		_, _ = fmt.Fprintln(w, strings.Join(lines[:previewLines], "\n"))
		_, _ = fmt.Fprintf(w, "... (%d more lines)\n", len(lines)-previewLines)
	}
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 40))
}

// selectTemplateInteractive shows a numbered menu of templates plus a
// custom URL entry.
func selectTemplateInteractive(reader *bufio.Reader, stdout io.Writer) (string, error) {
	names := templates.List()

	_, _ = fmt.Fprintln(stdout, "\nSelect a config template:")
	for i, name := range names {
		_, _ = fmt.Fprintf(stdout, "  %d. %-10s - %s\n", i+1, name, templates.GetDescription(name))
	}
	_, _ = fmt.Fprintf(stdout, "  %d. %-10s - Provide a template URL\n", len(names)+1, "custom")
	_, _ = fmt.Fprintf(stdout, "\nSelect [1-%d]: ", len(names)+1)

	answer, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || answer == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	answer = strings.TrimSpace(answer)

	num, err := strconv.Atoi(answer)
	if err != nil || num < 1 || num > len(names)+1 {
		return "", fmt.Errorf("invalid selection: %s", answer)
	}

	if num == len(names)+1 {
		_, _ = fmt.Fprint(stdout, "Enter template URL: ")
		url, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || url == "") {
			return "", fmt.Errorf("read URL: %w", err)
		}
		url = strings.TrimSpace(url)
		if !isURL(url) {
			return "", fmt.Errorf("invalid template URL: %q", url)
		}
		return url, nil
	}

	return names[num-1], nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// fetchRemoteTemplate downloads a template.
func fetchRemoteTemplate(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "qboxup/"+buildVersion)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return content, nil
}

// validateTemplateContent loads content through the config loader. The temp
// file has no extension so the loader sniffs the format.
func validateTemplateContent(content []byte) error {
	tmpFile, err := os.CreateTemp("", "qboxup-template-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmpFile.Write(content); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	_, err = config.Load(tmpName)
	return err
}

// defaultConfigPath is the first config directory searched by the loader.
func defaultConfigPath() string {
	dirs, err := config.ConfigDirs()
	if err != nil || len(dirs) == 0 {
		return "qboxup.yaml"
	}
	return filepath.Join(dirs[0], "qboxup.yaml")
}

// expandHomePath expands a leading ~/.
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
