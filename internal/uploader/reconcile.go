package uploader

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-retry"

	"github.com/ameledin/studiovault/internal/common"
	"github.com/ameledin/studiovault/internal/logging"
)

const confirmAttempts = 3

// confirm submits the locally-succeeded tasks for server-side verification
// and applies the authoritative verdict to the result: confirmed tasks move
// to Completed, deleted ones to Failed with the server's reason. The call is
// a verify operation and safe to repeat, so transient failures are retried;
// if it ultimately fails, every locally-succeeded file is demoted — client
// success is advisory, server verification is authoritative.
func (p *Pipeline) confirm(ctx context.Context, rep *reporter, log logging.Logger,
	collectionID, batchToken string, completed []*Task, result *Result) (*ConfirmResult, error) {

	if len(completed) == 0 {
		return nil, nil
	}

	claims := make([]UploadClaim, len(completed))
	for i, t := range completed {
		claims[i] = UploadClaim{Filename: t.File.Name(), Key: t.Key, Size: t.File.Size()}
	}

	var verdict *ConfirmResult
	backoff := retry.WithMaxRetries(confirmAttempts-1, retry.NewExponential(p.confirmBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		cctx, cancel := context.WithTimeout(ctx, p.opts.ConfirmTimeout)
		defer cancel()

		v, err := p.broker.ConfirmUploads(cctx, collectionID, batchToken, claims)
		if err != nil {
			log.Warn(ctx, "confirmation attempt failed", "error", err.Error())
			return retry.RetryableError(err)
		}
		verdict = v
		return nil
	})
	if err != nil {
		// Unverifiable batch: none of the locally-succeeded files may be
		// presented as durably stored.
		err = fmt.Errorf("%w: %v", common.ErrConfirmationFailed, err)
		for _, t := range completed {
			result.Failed = append(result.Failed, FileFailure{
				Filename: t.File.Name(),
				Key:      t.Key,
				Reason:   err.Error(),
			})
		}
		rep.error(common.SecuritySubject, err.Error())
		log.Error(ctx, "confirmation failed, demoting local successes", "files", len(completed), "error", err.Error())
		return nil, err
	}

	rejected := make(map[string]DeletedFile, len(verdict.DeletedFiles))
	for _, d := range verdict.DeletedFiles {
		rejected[d.Key] = d
	}

	for _, t := range completed {
		if d, ok := rejected[t.Key]; ok {
			reason := fmt.Sprintf("%s: %s", common.ErrSecurityViolation, d.Reason)
			result.Failed = append(result.Failed, FileFailure{
				Filename: t.File.Name(),
				Key:      t.Key,
				Reason:   reason,
				Security: true,
			})
			rep.error(common.SecuritySubject, fmt.Sprintf("%s (%s): %s", t.File.Name(), t.Key, d.Reason))
			log.Warn(ctx, "server rejected claimed upload", "key", t.Key, "reason", d.Reason)
			continue
		}
		result.Completed = append(result.Completed, FileResult{
			Filename: t.File.Name(),
			Key:      t.Key,
			Size:     t.File.Size(),
		})
	}

	return verdict, nil
}
