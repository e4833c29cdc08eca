package eventbus

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

type EventBus interface {
	Publish(args ...interface{})
	PublishE(args ...interface{}) error
	Subscribe(handler interface{})
	Unsubscribe(handler interface{})
	Clear()
	SubscribersCount() int
}

var (
	ErrNoSubscribers        = errors.New("eventbus: no matching subscribers")
	ErrInvalidHandlerReturn = errors.New("eventbus: invalid handler return signature")
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type publisher struct {
	log         *logrus.Logger
	mu          sync.RWMutex
	subscribers []interface{}
}

func NewEventPublisher(log *logrus.Logger) EventBus {
	return &publisher{log: log}
}

// MatchSignature reports whether handler accepts exactly args, in order.
func MatchSignature(handler interface{}, args []interface{}) bool {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Func || t.NumIn() != len(args) {
		return false
	}
	for i, arg := range args {
		paramType := t.In(i)
		if arg == nil {
			if paramType.Kind() != reflect.Interface && paramType.Kind() != reflect.Ptr {
				return false
			}
			continue
		}
		argType := reflect.TypeOf(arg)
		if paramType.Kind() == reflect.Interface {
			if !argType.Implements(paramType) {
				return false
			}
			continue
		}
		if !argType.AssignableTo(paramType) {
			return false
		}
	}
	return true
}

func (p *publisher) snapshot() []interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]interface{}, len(p.subscribers))
	copy(out, p.subscribers)
	return out
}

func (p *publisher) call(handler interface{}, args []interface{}) (err error) {
	v := reflect.ValueOf(handler)
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(v.Type().In(i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("eventbus: handler %s panicked: %v", v.Type().String(), r)
		}
	}()

	out := v.Call(in)
	switch {
	case len(out) == 0:
		return nil
	case len(out) != 1 || out[0].Type() != errorType:
		return errors.Wrapf(ErrInvalidHandlerReturn, "handler %s", v.Type().String())
	case out[0].IsNil():
		return nil
	default:
		return out[0].Interface().(error)
	}
}

// Publish delivers args to every matching subscriber, logging handler failures.
func (p *publisher) Publish(args ...interface{}) {
	err := p.PublishE(args...)
	if err == nil || p.log == nil {
		return
	}
	if errors.Is(err, ErrNoSubscribers) {
		p.log.Warnf("eventbus.Publish: no matching subscribers for event with args: %v", args)
		return
	}
	p.log.WithError(err).Error("eventbus.Publish: handler failed")
}

func (p *publisher) PublishE(args ...interface{}) error {
	handled := false
	var errs []error
	for _, handler := range p.snapshot() {
		if !MatchSignature(handler, args) {
			continue
		}
		handled = true
		if err := p.call(handler, args); err != nil {
			errs = append(errs, err)
		}
	}
	if !handled {
		return ErrNoSubscribers
	}
	return stderrors.Join(errs...)
}

func (p *publisher) Subscribe(handler interface{}) {
	if reflect.TypeOf(handler).Kind() != reflect.Func {
		panic("handler must be a function")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, handler)
}

func (p *publisher) Unsubscribe(handler interface{}) {
	target := reflect.ValueOf(handler).Pointer()
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, h := range p.subscribers {
		if reflect.ValueOf(h).Pointer() == target {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			return
		}
	}
}

func (p *publisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = nil
}

func (p *publisher) SubscribersCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers)
}
