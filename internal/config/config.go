// Package config handles configuration loading for the EBICS client.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax). This allows key passphrases
// and database credentials to be injected at runtime.
//
// # Configuration Sections
//
//   - ebics: bank endpoint, subscriber identity and procedure versions
//   - bank: pinned bank key digests and optional bank key files
//   - keystore: where the subscriber keys live (file or pkcs11)
//   - storage: MongoDB for order id counters and the request journal
//   - transport: HTTPS client settings
//
// # Example Configuration
//
//	ebics:
//	  url: https://ebics.bank.example/ebicsweb
//	  hostId: EBIXHOST
//	  partnerId: PARTNER1
//	  userId: USER1
//
//	bank:
//	  authenticationDigest: 8F2A...
//	  encryptionDigest: 11C4...
//	  keyFiles:
//	    - /etc/ebics/bank-x002.pem
//	    - /etc/ebics/bank-e002.pem
//
//	keystore:
//	  mode: file
//	  file:
//	    keyDir: /etc/ebics/keys
//	    passphrase: ${EBICS_KEY_PASSPHRASE}
//
//	storage:
//	  mongodb:
//	    uri: ${MONGODB_URI}
//
// See [Load] for loading configuration from a file.
package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-ebics/pkg/session"
)

// Config is the root configuration structure
type Config struct {
	EBICS     EBICSConfig     `yaml:"ebics"`
	Bank      BankConfig      `yaml:"bank"`
	Keystore  KeystoreConfig  `yaml:"keystore"`
	Storage   StorageConfig   `yaml:"storage"`
	Transport TransportConfig `yaml:"transport"`
}

// EBICSConfig identifies the bank and the subscriber
type EBICSConfig struct {
	URL            string `yaml:"url"`
	HostID         string `yaml:"hostId"`
	PartnerID      string `yaml:"partnerId"`
	UserID         string `yaml:"userId"`
	SecurityMedium string `yaml:"securityMedium"`

	Revision int    `yaml:"revision"`
	Version  string `yaml:"version"`

	SignatureVersion      string `yaml:"signatureVersion"`
	AuthenticationVersion string `yaml:"authenticationVersion"`
	EncryptionVersion     string `yaml:"encryptionVersion"`

	Product ProductConfig `yaml:"product"`
}

// ProductConfig describes the client software to the bank
type ProductConfig struct {
	Language    string `yaml:"language"`
	Name        string `yaml:"name"`
	InstituteID string `yaml:"instituteId"`
}

// BankConfig holds the bank key state
type BankConfig struct {
	// Hex SHA-256 digests of the bank keys, as published by the bank
	AuthenticationDigest string `yaml:"authenticationDigest"`
	EncryptionDigest     string `yaml:"encryptionDigest"`

	// PEM files with the bank public keys. Only keys matching a digest are used.
	KeyFiles []string `yaml:"keyFiles"`
}

// KeystoreConfig holds subscriber key settings
type KeystoreConfig struct {
	// Mode determines where subscriber keys are loaded from
	// - "file": PEM or passphrase-sealed key files
	// - "pkcs11": keys stored in a PKCS#11 token (HSM/smart card)
	Mode string `yaml:"mode"`

	File   FileKeyConfig `yaml:"file"`
	PKCS11 PKCS11Config  `yaml:"pkcs11"`
}

// FileKeyConfig holds file-based key settings
type FileKeyConfig struct {
	// Directory containing {userId}/{role}.pem files
	KeyDir string `yaml:"keyDir"`
	// Passphrase for sealed key files
	Passphrase string `yaml:"passphrase"`
}

// PKCS11Config holds PKCS#11 HSM settings
type PKCS11Config struct {
	// Path to the PKCS#11 library (.so/.dylib/.dll)
	ModulePath string `yaml:"modulePath"`
	SlotID     uint   `yaml:"slotId"`
	SlotLabel  string `yaml:"slotLabel"`
	// PIN for authentication (can be env var reference like ${HSM_PIN})
	PIN string `yaml:"pin"`
	// Key labels (pattern: ebics-{user-id}-{role})
	KeyLabelPattern string `yaml:"keyLabelPattern"`
}

// StorageConfig holds database settings
type StorageConfig struct {
	MongoDB MongoDBConfig `yaml:"mongodb"`
}

// MongoDBConfig holds MongoDB connection settings. An empty URI keeps order
// ids in memory and disables the journal.
type MongoDBConfig struct {
	URI      string        `yaml:"uri"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

// TransportConfig holds HTTPS client settings
type TransportConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MinTLS    string        `yaml:"minTLS"`
	CAFile    string        `yaml:"caFile"`
	UserAgent string        `yaml:"userAgent"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration from YAML bytes
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Session returns the EBICS session described by the configuration
func (c *Config) Session() session.Session {
	return session.Session{
		HostID:                c.EBICS.HostID,
		SignatureVersion:      c.EBICS.SignatureVersion,
		AuthenticationVersion: c.EBICS.AuthenticationVersion,
		EncryptionVersion:     c.EBICS.EncryptionVersion,
	}
}

// Identity returns the subscriber identity
func (c *Config) Identity() session.Identity {
	return session.Identity{
		UserID:         c.EBICS.UserID,
		PartnerID:      c.EBICS.PartnerID,
		SecurityMedium: c.EBICS.SecurityMedium,
	}
}

// Product returns the product description sent in every request
func (c *Config) Product() session.Product {
	return session.Product{
		Language:    c.EBICS.Product.Language,
		Name:        c.EBICS.Product.Name,
		InstituteID: c.EBICS.Product.InstituteID,
	}
}

// BankKeyDigests returns the pinned bank key digests
func (c *Config) BankKeyDigests() (session.BankKeyDigests, error) {
	return session.ParseBankKeyDigests(c.Bank.AuthenticationDigest, c.Bank.EncryptionDigest)
}

// MinTLSVersion maps transport.minTLS to a crypto/tls version
func (c *Config) MinTLSVersion() uint16 {
	if c.Transport.MinTLS == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

func (c *Config) applyDefaults() {
	defaults := session.New(c.EBICS.HostID)
	if c.EBICS.Revision == 0 {
		c.EBICS.Revision = session.DefaultRevision
	}
	if c.EBICS.Version == "" {
		c.EBICS.Version = session.DefaultVersion
	}
	if c.EBICS.SignatureVersion == "" {
		c.EBICS.SignatureVersion = defaults.SignatureVersion
	}
	if c.EBICS.AuthenticationVersion == "" {
		c.EBICS.AuthenticationVersion = defaults.AuthenticationVersion
	}
	if c.EBICS.EncryptionVersion == "" {
		c.EBICS.EncryptionVersion = defaults.EncryptionVersion
	}
	if c.EBICS.SecurityMedium == "" {
		c.EBICS.SecurityMedium = session.DefaultSecurityMedium
	}
	if c.EBICS.Product.Language == "" {
		c.EBICS.Product.Language = session.DefaultProduct.Language
	}
	if c.EBICS.Product.Name == "" {
		c.EBICS.Product.Name = session.DefaultProduct.Name
	}
	if c.Keystore.Mode == "" {
		c.Keystore.Mode = "file"
	}
	if c.Keystore.File.KeyDir == "" {
		c.Keystore.File.KeyDir = "./keys"
	}
	if c.Keystore.PKCS11.KeyLabelPattern == "" {
		c.Keystore.PKCS11.KeyLabelPattern = "ebics-{user-id}-{role}"
	}
	if c.Storage.MongoDB.Database == "" {
		c.Storage.MongoDB.Database = "ebics"
	}
	if c.Storage.MongoDB.Timeout == 0 {
		c.Storage.MongoDB.Timeout = 10 * time.Second
	}
	if c.Transport.Timeout == 0 {
		c.Transport.Timeout = 30 * time.Second
	}
	if c.Transport.MinTLS == "" {
		c.Transport.MinTLS = "1.2"
	}
}

func (c *Config) validate() error {
	if err := c.Session().Validate(); err != nil {
		return fmt.Errorf("ebics: %w", err)
	}
	if err := c.Identity().Validate(); err != nil {
		return fmt.Errorf("ebics: %w", err)
	}
	if _, err := c.BankKeyDigests(); err != nil {
		return fmt.Errorf("bank: %w", err)
	}

	switch c.Keystore.Mode {
	case "pkcs11", "file":
		// Valid modes
	default:
		return fmt.Errorf("keystore.mode must be 'pkcs11' or 'file', got '%s'", c.Keystore.Mode)
	}

	if c.Keystore.Mode == "pkcs11" && c.Keystore.PKCS11.ModulePath == "" {
		return fmt.Errorf("keystore.pkcs11.modulePath is required when mode is 'pkcs11'")
	}

	switch c.Transport.MinTLS {
	case "1.2", "1.3":
	default:
		return fmt.Errorf("transport.minTLS must be '1.2' or '1.3', got '%s'", c.Transport.MinTLS)
	}

	return nil
}
