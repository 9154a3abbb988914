package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/juju/ansiterm"

	"jmssh/backend/internal/types"
)

var modeColor = map[types.AuthMode]*ansiterm.Context{
	types.AuthAgent:    ansiterm.Foreground(ansiterm.Green),
	types.AuthPassword: ansiterm.Foreground(ansiterm.Yellow),
	types.AuthKey:      ansiterm.Foreground(ansiterm.BrightBlue),
}

func printProfile(w io.Writer, v types.ProfileView) {
	fmt.Fprintf(w, "label: %s\n", v.Label)
	fmt.Fprintf(w, "id:    %d\n", v.ID)
	fmt.Fprintf(w, "host:  %s\n", v.Host)
	fmt.Fprintf(w, "user:  %s\n", v.User)
	fmt.Fprintf(w, "port:  %d\n", v.Port)
	fmt.Fprintf(w, "mode:  %s\n", v.Mode)
	if v.KeyPath != "" {
		fmt.Fprintf(w, "key:   %s\n", v.KeyPath)
	}
	if len(v.Jumps) > 0 {
		fmt.Fprintf(w, "via:   %s\n", strings.Join(v.Jumps, " -> "))
	}
	if v.Tags != "" {
		fmt.Fprintf(w, "tags:  %s\n", v.Tags)
	}
	if v.Note != "" {
		fmt.Fprintf(w, "note:  %s\n", v.Note)
	}
}

// printProfileList 以表格输出；颜色只用在最后一列，避免影响对齐
func printProfileList(w io.Writer, views []types.ProfileView, color bool) error {
	if len(views) == 0 {
		fmt.Fprintln(w, "no profiles yet, add one with: jmssh profile add <label> --host <host>")
		return nil
	}

	tw := ansiterm.NewTabWriter(w, 0, 1, 2, ' ', 0)
	tw.SetColorCapable(color)
	fmt.Fprintln(tw, "ID\tLABEL\tENDPOINT\tVIA\tTAGS\tMODE")
	for _, v := range views {
		via := "-"
		if len(v.Jumps) > 0 {
			via = strings.Join(v.Jumps, ",")
		}
		tags := v.Tags
		if tags == "" {
			tags = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s@%s:%d\t%s\t%s\t", v.ID, v.Label, v.User, v.Host, v.Port, via, tags)
		if ctx, ok := modeColor[v.Mode]; ok {
			ctx.Fprintf(&tw.Writer, "%s", v.Mode)
		} else {
			fmt.Fprintf(tw, "%s", v.Mode)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
