// Package client is a cache-coherent Go client of the academics API.
//
// Each resource collection gets a ResourceClient owning its cache: reads are deduplicated
// and cached by request signature, and mutations invalidate the cached queries they may
// affect through tags. An API bundles the clients of every collection over one Transport.
package client

import (
	"context"

	"github.com/sendgrid/rest"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/classroom"
	"github.com/trezcool/masomo-admin/core/course"
	"github.com/trezcool/masomo-admin/core/group"
	"github.com/trezcool/masomo-admin/core/subject"
)

// Resource types, used as cache tag types.
const (
	TypeClassroom = "classroom"
	TypeCourse    = "course"
	TypeGroup     = "group"
	TypeSubject   = "subject"
	TypeMe        = "me"
)

type (
	ClassroomClient = ResourceClient[classroom.Classroom, classroom.NewClassroom, classroom.UpdateClassroom]
	CourseClient    = ResourceClient[course.Course, course.NewCourse, course.UpdateCourse]
	GroupClient     = ResourceClient[group.Group, group.NewGroup, group.UpdateGroup]
	SubjectClient   = ResourceClient[subject.Subject, subject.NewSubject, subject.UpdateSubject]
)

type lifecycle interface {
	Focus()
	Reconnect()
	Reset()
}

// API holds the clients of every resource collection.
type API struct {
	Classrooms *ClassroomClient
	Courses    *CourseClient
	Groups     *GroupClient
	Subjects   *SubjectClient

	tr      *Transport
	me      *cache
	clients []lifecycle
}

func NewAPI(opts Options) (*API, error) {
	tr, err := NewTransport(opts)
	if err != nil {
		return nil, err
	}
	api := &API{tr: tr}

	if api.Classrooms, err = NewResourceClient[classroom.Classroom, classroom.NewClassroom, classroom.UpdateClassroom](
		tr, TypeClassroom, "/classrooms",
	); err != nil {
		return nil, err
	}
	if api.Courses, err = NewResourceClient[course.Course, course.NewCourse, course.UpdateCourse](
		tr, TypeCourse, "/courses",
	); err != nil {
		return nil, err
	}
	if api.Groups, err = NewResourceClient[group.Group, group.NewGroup, group.UpdateGroup](
		tr, TypeGroup, "/groups",
	); err != nil {
		return nil, err
	}
	if api.Subjects, err = NewResourceClient[subject.Subject, subject.NewSubject, subject.UpdateSubject](
		tr, TypeSubject, "/subjects",
	); err != nil {
		return nil, err
	}
	api.clients = []lifecycle{api.Classrooms, api.Courses, api.Groups, api.Subjects}

	metrics, err := newCacheMetrics(tr.opts.MeterProvider, TypeMe)
	if err != nil {
		return nil, err
	}
	api.me = newCache(tr.opts.Policy, tr.logger, metrics)
	return api, nil
}

// Me returns the principal the credentials were issued to: GET /me.
func (api *API) Me(ctx context.Context, opts ...ReadOption) (core.Principal, error) {
	fetch := func(ctx context.Context) (interface{}, error) {
		var p core.Principal
		if err := api.tr.do(ctx, rest.Get, "/me", nil, nil, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
	data, err := api.me.read(ctx, signature(rest.Get, "/me", nil), []Tag{{Type: TypeMe, Key: "self"}}, fetch, newReadOptions(opts))
	if err != nil {
		return core.Principal{}, err
	}
	return data.(core.Principal), nil
}

// Focus notifies every client that the application regained focus.
func (api *API) Focus() {
	for _, c := range api.clients {
		c.Focus()
	}
}

// Reconnect notifies every client that the network connection came back.
func (api *API) Reconnect() {
	for _, c := range api.clients {
		c.Reconnect()
	}
}

// Reset drops the cached state of every client, e.g. on sign-out.
func (api *API) Reset() {
	for _, c := range api.clients {
		c.Reset()
	}
	api.me.reset(context.Background())
}
