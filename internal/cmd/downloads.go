package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/qbox-app/qboxup/internal/downloads"
)

// installerList renders as a table in text mode.
type installerList []downloads.Installer

func (l installerList) String() string {
	if len(l) == 0 {
		return "No downloaded installers"
	}
	lines := make([]string, len(l))
	for i, inst := range l {
		lines[i] = inst.String()
	}
	return strings.Join(lines, "\n")
}

func newDownloadsCmd() *cobra.Command {
	var (
		prune bool
		keep  int
	)

	cmd := &cobra.Command{
		Use:   "downloads",
		Short: "List or prune downloaded installers",
		Long: `List the installers saved by 'qboxup update', newest first.

With --prune, delete all but the most recent installers. The count comes from
updates.keep unless --keep is given.

Examples:
  qboxup downloads
  qboxup downloads --prune
  qboxup downloads --prune --keep 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			m := downloads.NewManager(a.cfg.Updates.DownloadDir)
			if !prune {
				list, err := m.List()
				if err != nil {
					return err
				}
				return a.out.Write(installerList(list))
			}

			if !cmd.Flags().Changed("keep") {
				keep = a.cfg.KeepInstallers()
			}
			result, err := m.Prune(keep)
			if err != nil {
				return err
			}
			return a.out.Write(result)
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "Delete old installers")
	cmd.Flags().IntVar(&keep, "keep", 0, "Installers to keep when pruning (default from config)")
	return cmd
}
