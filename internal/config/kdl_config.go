package config

import (
	"fmt"
	"log"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// parseKDL overlays a .nowmeta.kdl document onto cfg:
//
//	remote {
//	    url "https://dev12345.service-now.com"
//	    username "admin"
//	    timeout_sec 20
//	}
//	limits { scripts_per_source 10 }
//	aggregator { concurrent false }
func parseKDL(content string, cfg *Config) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "remote":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "url":
					if s, ok := firstStringArg(cn); ok {
						u, err := normalizeInstanceURL(s)
						if err != nil {
							return fmt.Errorf("remote.url: %w", err)
						}
						cfg.Remote.URL = u
					}
				case "connection":
					if s, ok := firstStringArg(cn); ok {
						remote, err := ParseConnectionString(s)
						if err != nil {
							return fmt.Errorf("remote.connection: %w", err)
						}
						cfg.Remote.URL = remote.URL
						if remote.Username != "" {
							cfg.Remote.Username = remote.Username
							cfg.Remote.Password = remote.Password
						}
					}
				case "username":
					assignString(cn, &cfg.Remote.Username)
				case "password":
					assignString(cn, &cfg.Remote.Password)
				case "timeout_sec":
					assignInt(cn, &cfg.Remote.TimeoutSec)
				default:
					warnUnknown("remote", cn)
				}
			}
		case "limits":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "scripts_per_source":
					assignInt(cn, &cfg.Limits.ScriptsPerSource)
				case "dictionary":
					assignInt(cn, &cfg.Limits.Dictionary)
				case "choices":
					assignInt(cn, &cfg.Limits.Choices)
				case "acls":
					assignInt(cn, &cfg.Limits.Acls)
				case "properties":
					assignInt(cn, &cfg.Limits.Properties)
				case "inheritance_depth":
					assignInt(cn, &cfg.Limits.InheritanceDepth)
				default:
					warnUnknown("limits", cn)
				}
			}
		case "aggregator":
			for _, cn := range n.Children {
				if nodeName(cn) == "concurrent" {
					if b, ok := firstBoolArg(cn); ok {
						cfg.Aggregator.Concurrent = b
					}
				} else {
					warnUnknown("aggregator", cn)
				}
			}
		case "logging":
			for _, cn := range n.Children {
				if nodeName(cn) == "dir" {
					assignString(cn, &cfg.Logging.Dir)
				} else {
					warnUnknown("logging", cn)
				}
			}
		}
	}
	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	b, ok := n.Arguments[0].Value.(bool)
	return b, ok
}

func assignString(n *document.Node, dst *string) {
	if s, ok := firstStringArg(n); ok {
		*dst = s
	}
}

func assignInt(n *document.Node, dst *int) {
	if v, ok := firstIntArg(n); ok {
		*dst = v
		return
	}
	log.Printf("WARNING: invalid integer for '%s' in KDL config, got %T", nodeName(n), argValue(n))
}

func argValue(n *document.Node) interface{} {
	if len(n.Arguments) == 0 {
		return nil
	}
	return n.Arguments[0].Value
}

func warnUnknown(section string, n *document.Node) {
	log.Printf("WARNING: unknown key '%s.%s' in KDL config", section, nodeName(n))
}
