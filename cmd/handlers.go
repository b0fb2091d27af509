package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ardanlabs/rtwbind/generator"
	"github.com/ardanlabs/rtwbind/locator"
	"github.com/ardanlabs/rtwbind/logutil"
	"github.com/ardanlabs/rtwbind/parser"
)

func (c *cli) generateHandler(cmd *cobra.Command, args []string) error {
	j, err := c.load(cmd)
	if err != nil {
		return err
	}

	files, err := generator.Generate(j.model, j.header, j.cfg.BindingOptions(), j.cfg.Mode)
	if err != nil {
		return fmt.Errorf("generating %s: %w", j.model, err)
	}

	if err := c.fs.MkdirAll(j.cfg.Output, 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	return c.writeFiles(j.cfg.Output, files)
}

// writeFiles stages every file in a temporary directory under dir and moves
// them into dir only once all of them were written.
func (c *cli) writeFiles(dir string, files map[string]string) error {
	staging, err := afero.TempDir(c.fs, dir, ".rtwbind-")
	if err != nil {
		return fmt.Errorf("error creating staging directory: %w", err)
	}
	defer c.fs.RemoveAll(staging)

	names := generator.FileNames(files)
	for _, name := range names {
		if err := afero.WriteFile(c.fs, filepath.Join(staging, name), []byte(files[name]), 0o644); err != nil {
			return fmt.Errorf("error writing %s: %w", name, err)
		}
	}

	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := c.fs.Rename(filepath.Join(staging, name), path); err != nil {
			return fmt.Errorf("error moving %s into place: %w", name, err)
		}
		logutil.Trace("wrote file", "path", path, "bytes", len(files[name]))
		fmt.Fprintf(c.stdout, "Generated: %s\n", path)
	}

	return nil
}

func (c *cli) inspectHandler(cmd *cobra.Command, args []string) error {
	j, err := c.load(cmd)
	if err != nil {
		return err
	}

	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		h := *j.header
		h.Model = j.model
		out, err := yaml.Marshal(h)
		if err != nil {
			return err
		}
		_, err = c.stdout.Write(out)
		return err
	}

	fmt.Fprintf(c.stdout, "Model %s (%s)\n", j.model, j.path)
	for _, s := range []parser.Section{parser.SectionInputs, parser.SectionOutputs, parser.SectionStates} {
		fmt.Fprintf(c.stdout, "\n%s (%s):\n", s, s.Tag())

		var data [][]string
		for _, f := range j.header.Fields(s) {
			data = append(data, []string{f.Name, f.CType, strconv.Itoa(f.Len()), strconv.Itoa(f.Line)})
		}

		table := tablewriter.NewWriter(c.stdout)
		table.SetHeader([]string{"NAME", "TYPE", "SIZE", "LINE"})
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetHeaderLine(false)
		table.SetBorder(false)
		table.SetNoWhiteSpace(true)
		table.SetTablePadding("    ")
		table.AppendBulk(data)
		table.Render()
	}

	for _, s := range j.header.Skipped {
		fmt.Fprintf(c.stdout, "\nwarning: %s section skipped, marker not followed by a struct\n", s)
	}

	return nil
}

func (c *cli) locateHandler(cmd *cobra.Command, args []string) error {
	cfg, logger, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}

	loc := locator.New(c.fs, logger)

	if all, _ := cmd.Flags().GetBool("all"); all {
		candidates, err := loc.Candidates(cfg.Dir)
		if err != nil {
			return err
		}
		for _, path := range candidates {
			fmt.Fprintln(c.stdout, path)
		}
		return nil
	}

	path, err := loc.Resolve(cfg.Header, cfg.Dir, cfg.Model)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, path)

	return nil
}

func (c *cli) envHandler(cmd *cobra.Command, args []string) error {
	cfg, _, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}

	vars := cfg.AsMap()

	var data [][]string
	for _, name := range generator.FileNames(vars) {
		v := vars[name]
		data = append(data, []string{v.Name, fmt.Sprintf("%v", v.Value), v.Description})
	}

	table := tablewriter.NewWriter(c.stdout)
	table.SetHeader([]string{"NAME", "VALUE", "DESCRIPTION"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoWrapText(false)
	table.AppendBulk(data)
	table.Render()

	return nil
}
