package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

func sample(ids ...string) *models.Table {
	t := models.NewTable("PA0002", "Pers.No.", "Last name")
	for _, id := range ids {
		t.Append(models.Row{"Pers.No.": id, "Last name": "Name " + id})
	}
	return t
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint([]*models.Table{sample("1", "2")})
	require.NoError(t, err)
	b, err := Fingerprint([]*models.Table{sample("1", "2")})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed, err := Fingerprint([]*models.Table{sample("1", "3")})
	require.NoError(t, err)
	assert.NotEqual(t, a, changed)

	missing, err := Fingerprint([]*models.Table{nil})
	require.NoError(t, err)
	empty, err := Fingerprint([]*models.Table{models.NewTable("")})
	require.NoError(t, err)
	assert.NotEqual(t, missing, empty)

	withExtra, err := Fingerprint([]*models.Table{sample("1", "2")}, "rules-v2")
	require.NoError(t, err)
	assert.NotEqual(t, a, withExtra)
}

func TestFingerprint_CellBoundaries(t *testing.T) {
	x := models.NewTable("T", "a", "b")
	x.Append(models.Row{"a": "ab", "b": "c"})
	y := models.NewTable("T", "a", "b")
	y.Append(models.Row{"a": "a", "b": "bc"})

	fx, err := Fingerprint([]*models.Table{x})
	require.NoError(t, err)
	fy, err := Fingerprint([]*models.Table{y})
	require.NoError(t, err)
	assert.NotEqual(t, fx, fy)
}

func TestSession_Memo(t *testing.T) {
	s := New("s1")
	calls := 0
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	v, hit, err := s.Memo("merge", 1, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, v)

	v, hit, err = s.Memo("merge", 1, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, v)

	v, hit, err = s.Memo("merge", 2, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls)

	s.Forget("merge")
	_, hit, err = s.Memo("merge", 2, compute)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSession_MemoErrorNotCached(t *testing.T) {
	s := New("s1")
	boom := errors.New("boom")
	_, _, err := s.Memo("k", 1, func() (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	v, hit, err := s.Memo("k", 1, func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "ok", v)
}

func TestSession_Sources(t *testing.T) {
	s := New("s1")
	s.SetSource(models.FileTypePA0002, sample("1", "2"), SourceInfo{Encoding: "utf-8"})
	s.SetSource(models.FileTypePA0001, sample("1"), SourceInfo{})

	assert.Equal(t, 2, s.Source(models.FileTypePA0002).Len())
	assert.Nil(t, s.Source(models.FileTypePA0008))

	infos := s.SourceInfos()
	require.Len(t, infos, 2)
	assert.Equal(t, models.FileTypePA0001, infos[0].FileType)
	assert.Equal(t, 2, infos[1].Rows)
	assert.Equal(t, "utf-8", infos[1].Encoding)
	assert.False(t, infos[1].UploadedAt.IsZero())

	snapshot := s.Sources()
	delete(snapshot, models.FileTypePA0002)
	assert.NotNil(t, s.Source(models.FileTypePA0002))

	s.RemoveSource(models.FileTypePA0001)
	assert.Len(t, s.SourceInfos(), 1)
}

func TestSession_Outputs(t *testing.T) {
	s := New("s1")
	s.SetOutput("Level1_LegalEntity", sample("1"))
	s.SetOutput("Employee", sample("2"))
	assert.Equal(t, []string{"Employee", "Level1_LegalEntity"}, s.OutputNames())

	s.ClearOutputs(func(name string) bool { return name != "Employee" })
	assert.Equal(t, []string{"Employee"}, s.OutputNames())
	assert.Nil(t, s.Output("Level1_LegalEntity"))
}

func TestManager(t *testing.T) {
	m := NewManager(time.Hour)
	a := m.Create()
	b := m.Create()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, m.Len())

	got, err := m.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Delete(b.ID))
	assert.ErrorIs(t, m.Delete(b.ID), ErrNotFound)
	assert.Len(t, m.List(), 1)
}

func TestManager_Sweep(t *testing.T) {
	m := NewManager(30 * time.Minute)
	idle := m.Create()
	active := m.Create()

	now := time.Now().UTC().Add(time.Hour)
	active.mu.Lock()
	active.lastAccess = now.Add(-time.Minute)
	active.mu.Unlock()

	assert.Equal(t, 1, m.Sweep(now))
	_, err := m.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(active.ID)
	assert.NoError(t, err)

	assert.Equal(t, 0, NewManager(0).Sweep(now))
}

func TestManager_IndependentSessions(t *testing.T) {
	m := NewManager(0)
	var wg sync.WaitGroup
	sessions := make([]*Session, 8)
	for i := range sessions {
		sessions[i] = m.Create()
	}
	for i, s := range sessions {
		wg.Add(1)
		go func(i int, s *Session) {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				s.SetSource(models.FileTypePA0002, sample(string(rune('a'+i))), SourceInfo{})
				_, _, _ = s.Memo("k", uint64(n), func() (any, error) { return i, nil })
			}
		}(i, s)
	}
	wg.Wait()
	for i, s := range sessions {
		assert.Equal(t, string(rune('a'+i)), s.Source(models.FileTypePA0002).Value(0, "Pers.No."))
	}
}

func TestJanitor(t *testing.T) {
	_, err := NewJanitor(NewManager(time.Minute), "not a schedule")
	assert.Error(t, err)

	j, err := NewJanitor(NewManager(time.Minute), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSweepSchedule, j.schedule)
	j.Start()
	assert.False(t, j.NextRun().IsZero())
	j.Stop()
}
