package bolt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"
	bberrors "go.etcd.io/bbolt/errors"

	"github.com/haukened/zonedns/internal/dns/domain"
	"github.com/haukened/zonedns/internal/dns/repos/blocklist"
)

var (
	bucketExact  = []byte("exact")
	bucketSuffix = []byte("suffix")
	bucketMeta   = []byte("meta")

	keyVersion = []byte("version")
	keyUpdated = []byte("updated")
)

// ErrCorruptValue is returned when a stored rule value cannot be decoded.
var ErrCorruptValue = errors.New("corrupt rule value")

// rule values: kind(1) | addedAt unix nanos(8) | source length(2) | source
const valueHeaderLen = 1 + 8 + 2

// boltStore implements blocklist.Store using bbolt. Exact rules are keyed by name, suffix
// rules by the reversed name.
type boltStore struct {
	db *bbolt.DB
}

type bucketCreator interface {
	CreateBucketIfNotExists(name []byte) (*bbolt.Bucket, error)
}

type bucketDeleter interface {
	DeleteBucket(name []byte) error
}

// ensureBucketsFn is swapped in tests to fail bucket creation.
var ensureBucketsFn = ensureBuckets

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (blocklist.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error { return ensureBucketsFn(tx) }); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func ensureBuckets(tx bucketCreator) error {
	for _, name := range [][]byte{bucketExact, bucketSuffix, bucketMeta} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("create bucket %s: %w", name, err)
		}
	}
	return nil
}

// deleteBuckets drops the rule buckets, tolerating ones that never existed.
func deleteBuckets(tx bucketDeleter) error {
	for _, name := range [][]byte{bucketExact, bucketSuffix} {
		if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bberrors.ErrBucketNotFound) {
			return fmt.Errorf("delete bucket %s: %w", name, err)
		}
	}
	return nil
}

func (s *boltStore) Close() error { return s.db.Close() }

// GetFirstMatch returns the exact rule for name if present, else the most specific suffix
// rule whose anchor is name or one of its parents.
func (s *boltStore) GetFirstMatch(name string) (domain.BlockRule, bool, error) {
	if name == "" {
		return domain.BlockRule{}, false, nil
	}
	var (
		rule  domain.BlockRule
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketExact); b != nil {
			if v := b.Get([]byte(name)); v != nil {
				r, err := decodeRuleValue(name, v)
				if err != nil {
					return err
				}
				rule, found = r, true
				return nil
			}
		}
		b := tx.Bucket(bucketSuffix)
		if b == nil {
			return nil
		}
		for a := name; a != ""; {
			if v := b.Get(reverseKey(a)); v != nil {
				r, err := decodeRuleValue(a, v)
				if err != nil {
					return err
				}
				rule, found = r, true
				return nil
			}
			i := strings.IndexByte(a, '.')
			if i < 0 {
				break
			}
			a = a[i+1:]
		}
		return nil
	})
	if err != nil {
		return domain.BlockRule{}, false, err
	}
	return rule, found, nil
}

// RebuildAll replaces every rule and the metadata in a single transaction, so readers see
// either the old snapshot or the new one.
func (s *boltStore) RebuildAll(rules []domain.BlockRule, version uint64, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := deleteBuckets(tx); err != nil {
			return err
		}
		if err := ensureBuckets(tx); err != nil {
			return err
		}
		if err := loadRules(tx.Bucket(bucketExact), tx.Bucket(bucketSuffix), rules); err != nil {
			return err
		}
		return writeMeta(tx.Bucket(bucketMeta), version, updatedUnix)
	})
}

// loadRules writes rules into their buckets. Rules of an unknown kind are skipped.
func loadRules(exact, suffix *bbolt.Bucket, rules []domain.BlockRule) error {
	for _, r := range rules {
		if r.Name == "" {
			return fmt.Errorf("rule from %q has an empty name", r.Source)
		}
		val, err := encodeRuleValue(r)
		if err != nil {
			return err
		}
		switch r.Kind {
		case domain.BlockRuleExact:
			err = exact.Put([]byte(r.Name), val)
		case domain.BlockRuleSuffix:
			err = suffix.Put(reverseKey(r.Name), val)
		default:
			continue
		}
		if err != nil {
			return fmt.Errorf("put %s: %w", r.Name, err)
		}
	}
	return nil
}

func writeMeta(b *bbolt.Bucket, version uint64, updatedUnix int64) error {
	if err := b.Put(keyVersion, binary.BigEndian.AppendUint64(nil, version)); err != nil {
		return err
	}
	return b.Put(keyUpdated, binary.BigEndian.AppendUint64(nil, uint64(updatedUnix)))
}

func (s *boltStore) Stats() (blocklist.StoreStats, error) {
	var st blocklist.StoreStats
	err := s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketExact); b != nil {
			st.ExactKeys = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketSuffix); b != nil {
			st.SuffixKeys = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			if v := b.Get(keyVersion); len(v) == 8 {
				st.Version = binary.BigEndian.Uint64(v)
			}
			if v := b.Get(keyUpdated); len(v) == 8 {
				st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		return nil
	})
	return st, err
}

func encodeRuleValue(r domain.BlockRule) ([]byte, error) {
	if len(r.Source) > 0xFFFF {
		return nil, fmt.Errorf("rule %s: source name too long", r.Name)
	}
	v := make([]byte, 0, valueHeaderLen+len(r.Source))
	v = append(v, byte(r.Kind))
	v = binary.BigEndian.AppendUint64(v, uint64(r.AddedAt.UnixNano()))
	v = binary.BigEndian.AppendUint16(v, uint16(len(r.Source)))
	return append(v, r.Source...), nil
}

func decodeRuleValue(name string, v []byte) (domain.BlockRule, error) {
	if len(v) < valueHeaderLen {
		return domain.BlockRule{}, fmt.Errorf("%w: %s: %d octets", ErrCorruptValue, name, len(v))
	}
	kind := domain.BlockRuleKind(v[0])
	if kind != domain.BlockRuleExact && kind != domain.BlockRuleSuffix {
		return domain.BlockRule{}, fmt.Errorf("%w: %s: kind %d", ErrCorruptValue, name, v[0])
	}
	added := int64(binary.BigEndian.Uint64(v[1:9]))
	n := int(binary.BigEndian.Uint16(v[9:11]))
	if len(v)-valueHeaderLen < n {
		return domain.BlockRule{}, fmt.Errorf("%w: %s: source length %d", ErrCorruptValue, name, n)
	}
	return domain.BlockRule{
		Name:    name,
		Kind:    kind,
		Source:  string(v[valueHeaderLen : valueHeaderLen+n]),
		AddedAt: time.Unix(0, added),
	}, nil
}

// reverseKey reverses the name bytes, matching the repository's bloom keys.
func reverseKey(name string) []byte {
	b := []byte(name)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}
