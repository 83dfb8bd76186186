package exporter

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/leorami/signal-export/internal/crypt"
	"github.com/leorami/signal-export/internal/identity"
	"github.com/leorami/signal-export/internal/keymat"
	"github.com/leorami/signal-export/internal/models"
	"github.com/leorami/signal-export/internal/sniff"
	"github.com/leorami/signal-export/internal/storage"
)

// destName derives a deterministic destination name from the source path and
// declared filename, so repeated runs reuse the same files instead of
// duplicating them.
func destName(srcPath, base string) string {
	sum := sha1.Sum([]byte(srcPath))
	return hex.EncodeToString(sum[:])[:8] + "_" + base
}

// copyIfAbsent copies src to dst unless dst already exists. Existing
// destinations are reused verbatim, which keeps the whole asset tree
// idempotent across runs.
func copyIfAbsent(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// relOut converts an absolute asset path to the slash-form path stored in
// archive.json, relative to the output root.
func (r *run) relOut(path string) string {
	rel, err := filepath.Rel(r.opts.OutDir, path)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}

// processAttachment copies one attachment into the thread's asset directory
// and resolves its type, icon, and encryption state, decrypting when key
// material allows. Every failure degrades to the best form available: a
// verbatim copy with the encrypted flag set, or an unresolved attachment
// with no path at all.
func (r *run) processAttachment(label string, row storage.MessageRow) models.Attachment {
	att := models.Attachment{Name: row.FileName, Icon: sniff.IconUnknown}

	srcPath := filepath.Join(r.opts.SourceDir, filepath.FromSlash(row.RelPath))
	if !fileExists(srcPath) {
		r.log.Debug().Str("path", row.RelPath).Msg("attachment blob missing")
		return att
	}

	base := identity.Safe(firstNonEmpty(row.FileName, filepath.Base(srcPath)))
	dir := filepath.Join(r.assetsDir, label)
	if err := os.MkdirAll(dir, 0755); err != nil {
		r.log.Debug().Err(err).Str("thread", label).Msg("asset directory")
		return att
	}
	dest := filepath.Join(dir, destName(srcPath, base))
	if err := copyIfAbsent(srcPath, dest); err != nil {
		r.log.Debug().Err(err).Str("path", row.RelPath).Msg("copy attachment")
		return att
	}

	att.Path = r.relOut(dest)
	att.MIME = sniff.MIMEType(dest, base)
	att.Icon = sniff.IconForMIME(att.MIME)
	att.LikelyEncrypted = sniff.LooksEncrypted(dest)

	if !att.LikelyEncrypted {
		return att
	}
	key := keymat.ExtractKey(row.LocalKey, row.AltKey)
	if key == nil {
		return att
	}

	decPath := filepath.Join(dir, "dec_"+base)
	ok := fileExists(decPath)
	if !ok {
		mode := crypt.AttemptDecrypt(dest, decPath, key, r.provider)
		if mode != "" {
			ok = true
			r.decrypted++
			r.log.Debug().Str("mode", mode).Str("name", base).Msg("attachment decrypted")
		}
	}
	if ok {
		att.OriginalPath = att.Path
		att.Path = r.relOut(decPath)
		att.MIME = sniff.MIMEType(decPath, base)
		att.Icon = sniff.IconForMIME(att.MIME)
		att.LikelyEncrypted = false
	}
	return att
}

// processAvatar resolves a conversation's avatar blob, if its JSON column
// points at one, into assets/avatars. Failures leave the conversation
// without an avatar rather than failing the pass.
func (r *run) processAvatar(row storage.ConversationRow, display string) {
	info := keymat.ParseAvatarJSON(row.JSON)
	if info.Path == "" {
		return
	}
	srcPath := filepath.Join(r.opts.SourceDir, filepath.FromSlash(info.Path))
	if !fileExists(srcPath) {
		return
	}

	ext := filepath.Ext(srcPath)
	if ext == "" {
		ext = ".jpg"
	}
	if len(ext) > 8 {
		ext = ext[:8]
	}
	name := identity.Safe(display) + ext
	dest := filepath.Join(r.avatarsDir, name)
	if err := copyIfAbsent(srcPath, dest); err != nil {
		r.log.Debug().Err(err).Str("conversation", row.ID).Msg("copy avatar")
		return
	}

	if !sniff.LooksEncrypted(dest) {
		r.avatarRel[row.ID] = r.relOut(dest)
		return
	}

	decPath := filepath.Join(r.avatarsDir, "dec_"+name)
	ok := fileExists(decPath)
	if !ok {
		if key := keymat.ExtractKey(info.Key1, info.Key2); key != nil {
			ok = crypt.AttemptDecrypt(dest, decPath, key, r.provider) != ""
			if ok {
				r.decrypted++
			}
		}
	}
	if ok {
		r.avatarRel[row.ID] = r.relOut(decPath)
		return
	}
	r.avatarRel[row.ID] = r.relOut(dest)
	r.avatarEnc[row.ID] = true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
