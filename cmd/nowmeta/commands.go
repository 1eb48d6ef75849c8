package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/standardbeagle/nowmeta/internal/mcp"
	"github.com/standardbeagle/nowmeta/internal/metadata"

	"github.com/urfave/cli/v2"
)

// withService runs fn against a one-shot service built from the global flags
func withService(c *cli.Context, fn func(svc *metadata.Service) (interface{}, error)) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	logger := mcp.NewWriterLogger(c.App.ErrWriter)
	svc, err := metadata.NewService(newQuerier(cfg.Remote), metadata.Options{
		Limits:     cfg.Limits,
		Concurrent: cfg.Aggregator.Concurrent,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	out, err := fn(svc)
	if err != nil {
		return err
	}
	return printJSON(c, out)
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func requireArgs(c *cli.Context, names ...string) ([]string, error) {
	if c.NArg() < len(names) {
		return nil, fmt.Errorf("usage: nowmeta %s <%s>", c.Command.Name, strings.Join(names, "> <"))
	}
	args := make([]string, len(names))
	for i := range names {
		args[i] = strings.TrimSpace(c.Args().Get(i))
	}
	return args, nil
}

func schemaCommand(c *cli.Context) error {
	args, err := requireArgs(c, "table")
	if err != nil {
		return err
	}
	return withService(c, func(svc *metadata.Service) (interface{}, error) {
		schema, err := svc.GetTableSchema(c.Context, args[0], !c.Bool("no-inherited"))
		if err != nil {
			return nil, err
		}
		if schema == nil {
			return nil, fmt.Errorf("table %q not found", args[0])
		}
		return schema, nil
	})
}

func choicesCommand(c *cli.Context) error {
	args, err := requireArgs(c, "table", "field")
	if err != nil {
		return err
	}
	return withService(c, func(svc *metadata.Service) (interface{}, error) {
		return svc.GetFieldChoices(c.Context, args[0], args[1])
	})
}

func scriptsCommand(c *cli.Context) error {
	search := metadata.ScriptSearch{
		TableName:  c.String("table"),
		Keyword:    c.String("keyword"),
		ScopeName:  c.String("scope"),
		ScriptType: c.String("type"),
		Limit:      c.Int("limit"),
	}
	return withService(c, func(svc *metadata.Service) (interface{}, error) {
		return svc.FindRelevantScripts(c.Context, search)
	})
}

func rulesCommand(c *cli.Context) error {
	search := metadata.BusinessRuleSearch{
		Name:      strings.TrimSpace(c.Args().First()),
		TableName: c.String("table"),
	}
	if search.Name == "" && search.TableName == "" {
		return errors.New("usage: nowmeta rules [name] [--table <table>]")
	}
	return withService(c, func(svc *metadata.Service) (interface{}, error) {
		return svc.FindBusinessRules(c.Context, search)
	})
}

func aclsCommand(c *cli.Context) error {
	args, err := requireArgs(c, "table")
	if err != nil {
		return err
	}
	search := metadata.AclSearch{
		TableName: args[0],
		Operation: c.String("operation"),
		FieldName: c.String("field"),
		Limit:     c.Int("limit"),
	}
	return withService(c, func(svc *metadata.Service) (interface{}, error) {
		return svc.FindAcls(c.Context, search)
	})
}

func propsCommand(c *cli.Context) error {
	args, err := requireArgs(c, "name")
	if err != nil {
		return err
	}
	search := metadata.PropertySearch{
		Name:      args[0],
		ScopeName: c.String("scope"),
		Limit:     c.Int("limit"),
	}
	return withService(c, func(svc *metadata.Service) (interface{}, error) {
		return svc.GetSystemProperties(c.Context, search)
	})
}

func scriptAPICommand(c *cli.Context) error {
	args, err := requireArgs(c, "name")
	if err != nil {
		return err
	}
	return withService(c, func(svc *metadata.Service) (interface{}, error) {
		api, err := svc.GetScriptIncludeAPI(c.Context, args[0])
		if err != nil {
			return nil, err
		}
		if api == nil {
			return nil, fmt.Errorf("script include %q not found", args[0])
		}
		return api, nil
	})
}
