package smctl

import (
	"regexp"
	"strings"

	"github.com/meigma/signet/core"
)

// certRowPattern matches a certificate row: an identifier of hyphen-joined
// hex groups, then the alias as the next non-whitespace token.
var certRowPattern = regexp.MustCompile(`^\s*([0-9a-fA-F]+(?:-[0-9a-fA-F]+)+)\s+(\S+)(.*)$`)

// ParseCertificates extracts certificate records from cert-list output.
//
// The tool prints a free-text table with no stable schema. A row is a
// certificate when it starts with a hyphen-joined hex identifier followed
// by an alias token. The row's status is ACTIVE when the literal token
// ACTIVE appears after the alias; otherwise the row's last token is carried
// as the status. Lines that do not match the row shape (headers, banners,
// blank lines) are ignored.
func ParseCertificates(out []byte) []core.CertificateRecord {
	var records []core.CertificateRecord
	for _, line := range strings.Split(string(out), "\n") {
		m := certRowPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		rec := core.CertificateRecord{ID: m[1], Alias: m[2]}
		rest := strings.Fields(m[3])
		for _, tok := range rest {
			if tok == "ACTIVE" {
				rec.Status = "ACTIVE"
				break
			}
		}
		if rec.Status == "" && len(rest) > 0 {
			rec.Status = rest[len(rest)-1]
		}

		records = append(records, rec)
	}
	return records
}

// ParseKeypairs extracts keypair records from keypair-list output.
//
// Parsing is positional: each line is split on whitespace, the third token
// is the keypair alias and the last token is the certificate identifier the
// keypair belongs to. Lines with fewer than three tokens are ignored.
// Callers match records by certificate identifier, so non-data lines that
// happen to have three tokens never select.
func ParseKeypairs(out []byte) []core.KeypairRecord {
	var records []core.KeypairRecord
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		records = append(records, core.KeypairRecord{
			Alias:         fields[2],
			CertificateID: fields[len(fields)-1],
		})
	}
	return records
}
