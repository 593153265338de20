package cli

import "testing"

func TestCommandWiring(t *testing.T) {
	want := map[string]bool{"view": false, "dump": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestDumpFlags(t *testing.T) {
	cmd := newDumpCmd()
	for _, name := range []string{"width", "height", "start", "len", "filter"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("dump flag %q missing", name)
		}
	}
}
