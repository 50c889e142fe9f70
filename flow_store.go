package auth

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const flowRecordVersionV1 = 1

type flowKind uint8

const (
	flowRegistration flowKind = iota + 1
	flowRecovery
)

// flowStage is a monotonically growing bitset: each pipeline step requires
// the previous step's bit and adds its own. Bits are never cleared.
type flowStage uint8

const (
	stageIdentityKnown flowStage = 1 << iota
	stageAuthenticatorCreated
	stageCodeVerified
)

type recoveryChannel uint8

const (
	channelNone recoveryChannel = iota
	channelEmail
	channelPhone
)

// flowRecord is the persisted state of one in-flight registration or
// recovery attempt. Records expire with their Redis TTL; an expired flow is
// indistinguishable from one that never existed.
type flowRecord struct {
	Kind       flowKind
	Stages     flowStage
	Channel    recoveryChannel
	Attempts   uint16
	ExpiresAt  int64
	IdentityID string
}

func (r *flowRecord) reached(stage flowStage) bool {
	return r != nil && r.Stages&stage != 0
}

type flowStore struct {
	redis  *redis.Client
	prefix string
}

func newFlowStore(client *redis.Client, prefix string) *flowStore {
	if prefix == "" {
		prefix = "mja"
	}
	return &flowStore{redis: client, prefix: prefix}
}

func (s *flowStore) key(flowID string) string {
	return s.prefix + ":f:" + flowID
}

func (s *flowStore) Save(ctx context.Context, flowID string, record *flowRecord) error {
	encoded, err := encodeFlowRecord(record)
	if err != nil {
		return err
	}

	ttl := time.Until(time.Unix(record.ExpiresAt, 0))
	if ttl <= 0 {
		return ErrFlowNotFound
	}

	if err := s.redis.Set(ctx, s.key(flowID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

func (s *flowStore) Get(ctx context.Context, flowID string) (*flowRecord, error) {
	data, err := s.redis.Get(ctx, s.key(flowID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrFlowNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	record, err := decodeFlowRecord(data)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > record.ExpiresAt {
		return nil, ErrFlowNotFound
	}

	return record, nil
}

func (s *flowStore) Delete(ctx context.Context, flowID string) error {
	if err := s.redis.Del(ctx, s.key(flowID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func encodeFlowRecord(record *flowRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(flowRecordVersionV1)
	buf.WriteByte(byte(record.Kind))
	buf.WriteByte(byte(record.Stages))
	buf.WriteByte(byte(record.Channel))

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if len(record.IdentityID) > 65535 {
		return nil, errors.New("flow record identity id too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.IdentityID))); err != nil {
		return nil, err
	}
	buf.WriteString(record.IdentityID)

	return buf.Bytes(), nil
}

func decodeFlowRecord(data []byte) (*flowRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != flowRecordVersionV1 {
		return nil, errors.New("invalid flow record version")
	}

	kind, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	stages, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	channel, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	record := &flowRecord{
		Kind:    flowKind(kind),
		Stages:  flowStage(stages),
		Channel: recoveryChannel(channel),
	}
	if record.Kind != flowRegistration && record.Kind != flowRecovery {
		return nil, errors.New("invalid flow record kind")
	}

	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	var identityLen uint16
	if err := binary.Read(reader, binary.BigEndian, &identityLen); err != nil {
		return nil, err
	}

	identity := make([]byte, identityLen)
	if _, err := io.ReadFull(reader, identity); err != nil {
		return nil, err
	}
	record.IdentityID = string(identity)

	return record, nil
}
