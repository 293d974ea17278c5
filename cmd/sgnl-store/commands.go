package main

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gwillem/signal-store/internal/backup"
	"github.com/gwillem/signal-store/internal/store"
	"github.com/gwillem/signal-store/internal/value"
)

type statCommand struct{}

func (cmd *statCommand) Execute(args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.Stats()
	if err != nil {
		return err
	}
	for _, ns := range store.Namespaces {
		fmt.Fprintf(stdout, "%-20s %d\n", ns, stats[ns])
	}

	// Namespaces written by other tools.
	all, err := s.KV().Namespaces()
	if err != nil {
		return err
	}
	for _, ns := range all {
		if slices.Contains(store.Namespaces, ns) {
			continue
		}
		n, err := s.KV().Count(ns)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%-20s %d (unmanaged)\n", ns, n)
	}
	return nil
}

type listCommand struct {
	Args struct {
		Kind string `positional-arg-name:"kind" required:"true" description:"Record kind (session, prekey, group, ...)"`
	} `positional-args:"true" required:"true"`
}

func (cmd *listCommand) Execute(args []string) error {
	ns, err := resolveKind(cmd.Args.Kind)
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ids, err := s.KV().IDs(ns)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(stdout, id)
	}
	return nil
}

type getCommand struct {
	Args struct {
		Kind string `positional-arg-name:"kind" required:"true" description:"Record kind"`
		ID   string `positional-arg-name:"id" required:"true" description:"Record id"`
	} `positional-args:"true" required:"true"`
}

func (cmd *getCommand) Execute(args []string) error {
	ns, err := resolveKind(cmd.Args.Kind)
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	rec, ok, err := s.KV().Get(ns, cmd.Args.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no %s record %q", ns, cmd.Args.ID)
	}
	text, err := value.SerializeIndent(rec)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, text)
	return nil
}

type rmCommand struct {
	Args struct {
		Kind string `positional-arg-name:"kind" required:"true" description:"Record kind"`
		ID   string `positional-arg-name:"id" required:"true" description:"Record id"`
	} `positional-args:"true" required:"true"`
}

func (cmd *rmCommand) Execute(args []string) error {
	ns, err := resolveKind(cmd.Args.Kind)
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.KV().Remove(ns, cmd.Args.ID); err != nil {
		return err
	}
	success("removed %s/%s", ns, cmd.Args.ID)
	return nil
}

type rmNumberCommand struct {
	Args struct {
		Number string `positional-arg-name:"number" required:"true" description:"Phone number (e.g. +15551234567)"`
	} `positional-args:"true" required:"true"`
}

func (cmd *rmNumberCommand) Execute(args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.RemoveSessionsByNumber(cmd.Args.Number)
	if err != nil {
		return err
	}
	if n == 0 {
		warnf("no sessions for %s", cmd.Args.Number)
		return nil
	}
	success("removed %d session(s) for %s", n, cmd.Args.Number)
	return nil
}

type wipeCommand struct {
	Kind string `short:"k" long:"kind" description:"Only wipe this record kind"`
	Yes  bool   `short:"y" long:"yes" description:"Required to wipe the whole store"`
}

func (cmd *wipeCommand) Execute(args []string) error {
	ns := ""
	if cmd.Kind != "" {
		var err error
		if ns, err = resolveKind(cmd.Kind); err != nil {
			return err
		}
	} else if !cmd.Yes {
		return fmt.Errorf("refusing to wipe the whole store without --yes")
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if ns != "" {
		if err := s.KV().RemoveAll(ns); err != nil {
			return err
		}
		success("wiped %s", ns)
		return nil
	}
	if err := s.RemoveAll(); err != nil {
		return err
	}
	success("wiped store")
	return nil
}

type enqueueCommand struct {
	ID     string `long:"id" description:"Envelope id (default: random UUID)"`
	Source string `long:"source" description:"Sender number or service id"`
	Args   struct {
		File string `positional-arg-name:"file" required:"true" description:"File holding the raw envelope bytes"`
	} `positional-args:"true" required:"true"`
}

func (cmd *enqueueCommand) Execute(args []string) error {
	data, err := os.ReadFile(cmd.Args.File)
	if err != nil {
		return fmt.Errorf("read envelope: %w", err)
	}
	id := cmd.ID
	if id == "" {
		id = uuid.NewString()
	}

	rec := value.Map(
		value.Field("id", value.String(id)),
		value.Field("version", value.Int(2)),
		value.Field("envelope", value.Bytes(data)),
		value.Field("timestamp", value.Int(time.Now().UnixMilli())),
		value.Field("attempts", value.Int(0)),
	)
	if cmd.Source != "" {
		rec = rec.With("source", value.String(cmd.Source))
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SaveUnprocessed(rec); err != nil {
		return err
	}
	n, err := s.GetUnprocessedCount()
	if err != nil {
		return err
	}
	success("queued %s (%d bytes), %d in queue", id, len(data), n)
	return nil
}

type exportCommand struct {
	Args struct {
		File string `positional-arg-name:"file" required:"true" description:"Backup file to write"`
	} `positional-args:"true" required:"true"`
}

func (cmd *exportCommand) Execute(args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := os.OpenFile(cmd.Args.File, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	n, err := backup.Export(f, s.KV())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	success("exported %d record(s) to %s", n, cmd.Args.File)
	return nil
}

type importCommand struct {
	Args struct {
		File string `positional-arg-name:"file" required:"true" description:"Backup file to read"`
	} `positional-args:"true" required:"true"`
}

func (cmd *importCommand) Execute(args []string) error {
	f, err := os.Open(cmd.Args.File)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := backup.Import(f, s.KV())
	if err != nil {
		warnf("imported %d record(s) with errors", n)
		return err
	}
	success("imported %d record(s) from %s", n, cmd.Args.File)
	return nil
}
