package ssh

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/ssh"
)

const keyBits = 4096

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// GenerateKeyPair generates a new RSA key pair for SSH authentication.
func GenerateKeyPair() (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	privDER := x509.MarshalPKCS1PrivateKey(privateKey)
	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: privDER,
	})

	publicKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: privateKeyPEM,
		PublicKey:  ssh.MarshalAuthorizedKey(publicKey),
	}, nil
}

// EnsureKeyPair loads the deployment key pair from privateKeyPath and
// its ".pub" sibling, generating and writing both if the private key
// does not exist yet.
func EnsureKeyPair(privateKeyPath string) (*KeyPair, error) {
	publicKeyPath := privateKeyPath + ".pub"

	privateKey, err := os.ReadFile(privateKeyPath)
	if err == nil {
		publicKey, err := os.ReadFile(publicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read public key %s: %w", publicKeyPath, err)
		}
		return &KeyPair{PrivateKey: privateKey, PublicKey: publicKey}, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read private key %s: %w", privateKeyPath, err)
	}

	log.Printf("Generating deployment SSH key pair at %s", privateKeyPath)
	pair, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(privateKeyPath, pair.PrivateKey, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write private key %s: %w", privateKeyPath, err)
	}
	if err := os.WriteFile(publicKeyPath, pair.PublicKey, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write public key %s: %w", publicKeyPath, err)
	}
	return pair, nil
}
