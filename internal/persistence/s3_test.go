package persistence

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 is an in-memory bucket covering the calls S3Store makes.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
}

type fakeObject struct {
	body []byte
	md   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = fakeObject{body: body, md: in.Metadata}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.body)), Metadata: obj.md}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{Metadata: obj.md, ContentLength: aws.Int64(int64(len(obj.body)))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k), Size: aws.Int64(int64(len(f.objects[k].body)))})
	}
	return out, nil
}

func TestS3SaveLoad(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	st := newS3WithClient(fake, "bucket", "games")

	info, err := st.Save(ctx, Record{Name: "slot", Year: 2027, Month: 11, Data: []byte(`{"ok":true}`)})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := fake.objects["games/"+info.ID+".json"]; !ok {
		t.Fatalf("object keys = %v", fake.objects)
	}

	data, got, err := st.Load(ctx, info.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("data = %s", data)
	}
	if got.Name != "slot" || got.Year != 2027 || got.Month != 11 {
		t.Errorf("info = %+v", got)
	}
}

func TestS3ListAndLatest(t *testing.T) {
	ctx := context.Background()
	st := newS3WithClient(newFakeS3(), "bucket", "")

	if _, err := st.Latest(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("latest on empty = %v", err)
	}
	for _, name := range []string{"a", "b", "c"} {
		if _, err := st.Save(ctx, Record{Name: name, Year: 2025, Month: 1, Data: []byte("{}")}); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	list, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list = %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Errorf("list not newest first: %+v", list)
		}
	}
	latest, err := st.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != list[0].ID {
		t.Errorf("latest = %s, want %s", latest.ID, list[0].ID)
	}
}

func TestS3Missing(t *testing.T) {
	st := newS3WithClient(newFakeS3(), "bucket", "")
	for _, id := range []string{"not-a-uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"} {
		if _, _, err := st.Load(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Errorf("load %s: err = %v, want ErrNotFound", id, err)
		}
	}
}
