package translator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/pkg/constants"
	"github.com/omnihive/backend/pkg/query"
)

// CacheKey digests the worker, statement and parameters of a read
func CacheKey(worker, sql string, params []any) string {
	h := sha256.New()
	h.Write([]byte(worker))
	h.Write([]byte{0})
	h.Write([]byte(sql))
	h.Write([]byte{0})
	encoded, _ := json.Marshal(params)
	h.Write(encoded)
	return hex.EncodeToString(h.Sum(nil))
}

// cachedQuery runs a read through the cache worker according to the
// request's cache mode. Cache failures are logged and never fail the read.
func (t *Translator) cachedQuery(ctx context.Context, o *operation, gctx models.GraphContext, qr query.QueryResult) ([][]map[string]any, error) {
	mode := gctx.Cache
	if mode != constants.CacheModeFrom && mode != constants.CacheModeFromRefresh {
		return o.db.ExecuteQuery(ctx, qr.SQL, qr.Params...)
	}

	cache, ok := registry.ResolveAs[ports.CacheWorker](o.snap.Registry, constants.WorkerKindCache)
	if !ok {
		return o.db.ExecuteQuery(ctx, qr.SQL, qr.Params...)
	}

	key := CacheKey(o.worker, qr.SQL, qr.Params)
	log := t.logger.WithFields(logrus.Fields{"worker": o.worker, "cacheKey": key})

	if mode == constants.CacheModeFrom {
		if cached, hit, err := cache.Get(ctx, key); err != nil {
			log.WithError(err).Warn("⚠️ Cache read failed")
		} else if hit {
			var sets [][]map[string]any
			dec := json.NewDecoder(bytes.NewReader([]byte(cached)))
			dec.UseNumber()
			if err := dec.Decode(&sets); err == nil {
				log.Debug("Cache hit")
				return sets, nil
			}
			log.Warn("⚠️ Discarding undecodable cache entry")
		}
	}

	sets, err := o.db.ExecuteQuery(ctx, qr.SQL, qr.Params...)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(sets)
	if err != nil {
		log.WithError(err).Warn("⚠️ Result could not be cached")
		return sets, nil
	}
	ttl := time.Duration(0)
	if gctx.CacheSeconds > 0 {
		ttl = time.Duration(gctx.CacheSeconds) * time.Second
	}
	if err := cache.Set(ctx, key, string(encoded), ttl); err != nil {
		log.WithError(err).Warn("⚠️ Cache write failed")
	}
	return sets, nil
}
