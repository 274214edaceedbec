// Copyright 2025 AgentDash
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// secretRefPrefix marks a credential value as a reference into AWS Secrets
// Manager instead of literal secret material.
// Format: "secretsmanager:<arn>" or "secretsmanager:<arn>#<json key>".
const secretRefPrefix = "secretsmanager:"

// IsSecretRef reports whether a credential value is a secret-store reference.
func IsSecretRef(value string) bool {
	return strings.HasPrefix(value, secretRefPrefix)
}

// SecretsResolver resolves secret-store references via AWS Secrets Manager,
// with a short in-process cache to avoid hammering the API during load.
type SecretsResolver struct {
	client *secretsmanager.Client
	cache  map[string]*secretCacheEntry
	mu     sync.RWMutex
	ttl    time.Duration
	logger *log.Logger
}

type secretCacheEntry struct {
	value     string
	expiresAt time.Time
}

// SecretsResolverOptions holds options for creating a SecretsResolver.
type SecretsResolverOptions struct {
	Region   string
	CacheTTL time.Duration
	Logger   *log.Logger
}

// NewSecretsResolver creates a new resolver backed by AWS Secrets Manager.
func NewSecretsResolver(ctx context.Context, opts SecretsResolverOptions) (*SecretsResolver, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[TENANT_SECRETS] ", log.LstdFlags)
	}

	cfgOpts := []func(*config.LoadOptions) error{}
	if opts.Region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &SecretsResolver{
		client: secretsmanager.NewFromConfig(cfg),
		cache:  make(map[string]*secretCacheEntry),
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Resolve turns a secret reference into its credential value.
func (s *SecretsResolver) Resolve(ctx context.Context, ref string) (string, error) {
	if !IsSecretRef(ref) {
		return ref, nil
	}

	target := strings.TrimPrefix(ref, secretRefPrefix)
	arn := target
	jsonKey := ""
	if idx := strings.LastIndex(target, "#"); idx >= 0 {
		arn = target[:idx]
		jsonKey = target[idx+1:]
	}

	s.mu.RLock()
	entry, exists := s.cache[target]
	s.mu.RUnlock()

	if exists && time.Now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	s.logger.Printf("Fetching secret %s from AWS Secrets Manager", maskARN(arn))

	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", maskARN(arn), err)
	}

	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", maskARN(arn))
	}
	secretValue := *result.SecretString

	value := secretValue
	if jsonKey != "" {
		var fields map[string]string
		if err := json.Unmarshal([]byte(secretValue), &fields); err != nil {
			return "", fmt.Errorf("secret %s is not a JSON object but key %q was requested", maskARN(arn), jsonKey)
		}
		v, ok := fields[jsonKey]
		if !ok {
			return "", fmt.Errorf("secret %s has no field %q", maskARN(arn), jsonKey)
		}
		value = v
	}

	s.mu.Lock()
	s.cache[target] = &secretCacheEntry{
		value:     value,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	return value, nil
}

// ResolveConfigs rewrites secret-store references in the given tenant configs
// in place. Called once at load time, before the registry is constructed. A
// reference that cannot be resolved leaves the credential empty, so Validate
// classifies the tenant as misconfigured on first use.
func (s *SecretsResolver) ResolveConfigs(ctx context.Context, configs []*Config) []error {
	var errs []error

	for _, cfg := range configs {
		if IsSecretRef(cfg.ServiceCredential) {
			value, err := s.Resolve(ctx, cfg.ServiceCredential)
			if err != nil {
				s.logger.Printf("Failed to resolve service credential for %s: %v", cfg.AgentID, err)
				errs = append(errs, fmt.Errorf("tenant %s: %w", cfg.AgentID, err))
				cfg.ServiceCredential = ""
				continue
			}
			cfg.ServiceCredential = value
		}

		if IsSecretRef(cfg.AnonCredential) {
			value, err := s.Resolve(ctx, cfg.AnonCredential)
			if err != nil {
				s.logger.Printf("Failed to resolve anon credential for %s: %v", cfg.AgentID, err)
				errs = append(errs, fmt.Errorf("tenant %s: %w", cfg.AgentID, err))
				cfg.AnonCredential = ""
				continue
			}
			cfg.AnonCredential = value
		}
	}

	return errs
}

// maskARN hides the secret name component of an ARN for logging.
func maskARN(arn string) string {
	if len(arn) <= 12 {
		return "***"
	}
	return arn[:12] + "***"
}
