// Package tags resolves {{...}} placeholders inside image references, so a
// configured tag like "gcr.io/acme/web:{{git.commit}}" pins the deployed
// image to the current checkout.
package tags

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/AnotherFullstackDev/deployctl/internal/lib"
	"github.com/AnotherFullstackDev/deployctl/internal/tags/git"
)

var (
	placeholderRe = regexp.MustCompile(`{{\s*([^{}]+)\s*}}`)
	modifierRe    = regexp.MustCompile(`(\w+)(\(([^()]*)\))?`)
)

type Resolver func() (string, error)

type modifier struct {
	name string
	args []string
}

type placeholder struct {
	raw       string
	value     string
	modifiers []modifier
}

type Service struct {
	gitRepoInfo git.RepositoryInfoService
}

func NewService(gitRepoInfo git.RepositoryInfoService) *Service {
	return &Service{
		gitRepoInfo: gitRepoInfo,
	}
}

func (s *Service) extractPlaceholders(value string) ([]placeholder, error) {
	matches := placeholderRe.FindAllStringSubmatchIndex(value, -1)
	placeholders := make([]placeholder, 0, len(matches))

	for _, match := range matches {
		raw := value[match[0]:match[1]]
		inner := value[match[2]:match[3]]

		segments := strings.Split(inner, "|")
		name := strings.TrimSpace(segments[0])

		modifiers := make([]modifier, 0, len(segments)-1)
		for _, segment := range segments[1:] {
			rawModifier := strings.TrimSpace(segment)
			if rawModifier == "" {
				continue
			}

			m, err := parseModifier(rawModifier, raw)
			if err != nil {
				return nil, err
			}
			modifiers = append(modifiers, m)
		}

		placeholders = append(placeholders, placeholder{
			raw:       raw,
			value:     name,
			modifiers: modifiers,
		})
	}

	return placeholders, nil
}

func parseModifier(rawModifier, rawPlaceholder string) (modifier, error) {
	match := modifierRe.FindStringSubmatch(rawModifier)
	if match == nil || match[1] == "" {
		return modifier{}, fmt.Errorf("invalid modifier format in placeholder: %s. %w", rawPlaceholder, lib.BadUserInputError)
	}

	var args []string
	if match[3] != "" {
		args = strings.Split(match[3], ",")
		for i := range args {
			args[i] = strings.TrimSpace(args[i])
			if unquoted, err := strconv.Unquote(args[i]); err == nil {
				args[i] = unquoted
			}
		}
	}

	return modifier{name: match[1], args: args}, nil
}

// Resolve replaces every placeholder in value. Built-in resolvers are
// consulted first, then the extra maps in order.
func (s *Service) Resolve(value string, extraResolvers ...map[string]Resolver) (string, error) {
	placeholders, err := s.extractPlaceholders(value)
	if err != nil {
		return "", fmt.Errorf("extracting placeholders: %w", err)
	}

	builtins := map[string]Resolver{
		"git.branch":     s.resolveGitBranch,
		"git.commit":     s.resolveGitCommit,
		"git.tag":        s.resolveGitTag,
		"time.timestamp": resolveUnixTimestamp,
		"time.iso8601":   resolveISO8601Timestamp,
	}

	for _, p := range placeholders {
		resolver, ok := builtins[p.value]
		if !ok {
			for _, resolvers := range extraResolvers {
				if extra, exists := resolvers[p.value]; exists {
					resolver, ok = extra, true
					break
				}
			}
		}
		if !ok {
			return "", fmt.Errorf("no resolver found for placeholder: %s. %w", p.raw, lib.BadUserInputError)
		}

		resolved, err := resolver()
		if err != nil {
			return "", fmt.Errorf("resolving placeholder %s: %w", p.raw, err)
		}

		for _, m := range p.modifiers {
			modifierFunc, ok := modifierResolvers[m.name]
			if !ok {
				return "", fmt.Errorf("no resolver found for modifier: %s in placeholder: %s. %w", m.name, p.raw, lib.BadUserInputError)
			}

			resolved, err = modifierFunc(resolved, m.args)
			if err != nil {
				return "", fmt.Errorf("applying modifier %s to placeholder %s: %w", m.name, p.raw, err)
			}
		}

		value = strings.Replace(value, p.raw, resolved, 1)
	}

	return value, nil
}

// HasGitPlaceholders reports whether the value references any git.* resolver,
// so callers open a repository only when one is actually needed.
func HasGitPlaceholders(value string) bool {
	for _, match := range placeholderRe.FindAllStringSubmatch(value, -1) {
		name := strings.TrimSpace(strings.Split(match[1], "|")[0])
		if strings.HasPrefix(name, "git.") {
			return true
		}
	}
	return false
}

func (s *Service) resolveGitBranch() (string, error) {
	branch, err := s.gitRepoInfo.CurrentBranch()
	if err != nil {
		return "", fmt.Errorf("getting current git branch: %w", err)
	}
	return branch, nil
}

func (s *Service) resolveGitCommit() (string, error) {
	commit, err := s.gitRepoInfo.CurrentCommit()
	if err != nil {
		return "", fmt.Errorf("getting current git commit: %w", err)
	}
	return commit.Hash.String(), nil
}

func (s *Service) resolveGitTag() (string, error) {
	tag, err := s.gitRepoInfo.CurrentTag()
	if err != nil {
		return "", fmt.Errorf("getting current git tag: %w", err)
	}
	if tag == nil {
		return "", fmt.Errorf("no git tag found for current commit: %w", lib.BadUserInputError)
	}

	return tag.Name().Short(), nil
}
