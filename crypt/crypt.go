// Package crypt renders a derived password in the forms that
// provisioning tools want: as is, base64, or as a crypt(3)/bcrypt hash
// ready for /etc/shadow or an htpasswd file.
package crypt

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"sort"

	"github.com/tredoe/osutil/user/crypt/md5_crypt"
	"github.com/tredoe/osutil/user/crypt/sha256_crypt"
	"github.com/tredoe/osutil/user/crypt/sha512_crypt"
	"golang.org/x/crypto/bcrypt"
)

const saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// BcryptCost is the work factor used for the bcrypt format.
var BcryptCost = 12

var formats = map[string]func(string) (string, error){
	"plain":        func(s string) (string, error) { return s, nil },
	"base64":       func(s string) (string, error) { return base64.StdEncoding.EncodeToString([]byte(s)), nil },
	"bcrypt":       cryptBcrypt,
	"crypt-md5":    cryptMD5,
	"crypt-sha256": cryptSHA256,
	"crypt-sha512": cryptSHA512,
}

// Formats lists the names Format accepts.
func Formats() []string {
	l := make([]string, 0, len(formats))
	for name := range formats {
		l = append(l, name)
	}
	sort.Strings(l)
	return l
}

// Valid reports whether Format knows the named format.  The empty name
// means plain.
func Valid(format string) bool {
	if format == "" {
		return true
	}
	_, ok := formats[format]
	return ok
}

// Format renders password in the named format.  Hashed formats use a
// fresh random salt, so unlike the password itself they differ from run
// to run.
func Format(password, format string) (string, error) {
	if format == "" {
		format = "plain"
	}
	fn, ok := formats[format]
	if !ok {
		return "", fmt.Errorf("%s is not a valid output format", format)
	}
	return fn(password)
}

func salt(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(saltChars)))
	for i := range b {
		j, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = saltChars[j.Int64()]
	}
	return string(b), nil
}

func cryptMD5(pass string) (string, error) {
	c := md5_crypt.New()
	s, err := salt(8)
	if err != nil {
		return "", err
	}
	md5, err := c.Generate([]byte(pass), []byte("$1$"+s))
	if err != nil {
		return "", fmt.Errorf("Error generating MD5 crypt for password: %s", err)
	}
	return md5, nil
}

func cryptSHA256(pass string) (string, error) {
	c := sha256_crypt.New()
	s, err := salt(16)
	if err != nil {
		return "", err
	}
	sha, err := c.Generate([]byte(pass), []byte("$5$"+s))
	if err != nil {
		return "", fmt.Errorf("Error generating SHA-256 crypt for password: %s", err)
	}
	return sha, nil
}

func cryptSHA512(pass string) (string, error) {
	c := sha512_crypt.New()
	s, err := salt(16)
	if err != nil {
		return "", err
	}
	sha, err := c.Generate([]byte(pass), []byte("$6$"+s))
	if err != nil {
		return "", fmt.Errorf("Error generating SHA-512 crypt for password: %s", err)
	}
	return sha, nil
}

func cryptBcrypt(pass string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pass), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
