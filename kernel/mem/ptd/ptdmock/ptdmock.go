// Package ptdmock is a hand-maintained, mockgen-style mock of ptd.Driver,
// used throughout kernel/mem/vmm's test suite in place of a real
// architecture-specific translation walk.
//
// Source: kernel/mem/ptd (interfaces: Driver)
package ptdmock

import (
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
)

// MockDriver is a mock of the Driver interface.
type MockDriver struct {
	ctrl *gomock.Controller
	recorder *MockDriverMockRecorder
}

// MockDriverMockRecorder is the mock recorder for MockDriver.
type MockDriverMockRecorder struct {
	mock *MockDriver
}

// NewMockDriver creates a new mock instance.
func NewMockDriver(ctrl *gomock.Controller) *MockDriver {
	mock := &MockDriver{ctrl: ctrl}
	mock.recorder = &MockDriverMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockDriver) EXPECT() *MockDriverMockRecorder {
	return m.recorder
}

// Associate mocks base method.
func (m *MockDriver) Associate(pa addr.PA, va addr.VA, size addr.MSize, perm ptd.Permission, opt ptd.Option) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Associate", pa, va, size, perm, opt)
	ret0, _ := ret[0].(error)
	return ret0
}

// Associate indicates an expected call of Associate.
func (mr *MockDriverMockRecorder) Associate(pa, va, size, perm, opt any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Associate", reflect.TypeOf((*MockDriver)(nil).Associate), pa, va, size, perm, opt)
}

// Unassociate mocks base method.
func (m *MockDriver) Unassociate(va addr.VA, size addr.MSize) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Unassociate", va, size)
	ret0, _ := ret[0].(error)
	return ret0
}

// Unassociate indicates an expected call of Unassociate.
func (mr *MockDriverMockRecorder) Unassociate(va, size any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Unassociate", reflect.TypeOf((*MockDriver)(nil).Unassociate), va, size)
}

// UpdatePageCache mocks base method.
func (m *MockDriver) UpdatePageCache(va addr.VA, size addr.MSize) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdatePageCache", va, size)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdatePageCache indicates an expected call of UpdatePageCache.
func (mr *MockDriverMockRecorder) UpdatePageCache(va, size any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdatePageCache", reflect.TypeOf((*MockDriver)(nil).UpdatePageCache), va, size)
}

// UpdatePageCacheAll mocks base method.
func (m *MockDriver) UpdatePageCacheAll() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdatePageCacheAll")
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdatePageCacheAll indicates an expected call of UpdatePageCacheAll.
func (mr *MockDriverMockRecorder) UpdatePageCacheAll() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdatePageCacheAll", reflect.TypeOf((*MockDriver)(nil).UpdatePageCacheAll))
}

// CopySystemArea mocks base method.
func (m *MockDriver) CopySystemArea(src ptd.Driver) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CopySystemArea", src)
	ret0, _ := ret[0].(error)
	return ret0
}

// CopySystemArea indicates an expected call of CopySystemArea.
func (mr *MockDriverMockRecorder) CopySystemArea(src any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CopySystemArea", reflect.TypeOf((*MockDriver)(nil).CopySystemArea), src)
}

// DestroyPageTable mocks base method.
func (m *MockDriver) DestroyPageTable() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DestroyPageTable")
	ret0, _ := ret[0].(error)
	return ret0
}

// DestroyPageTable indicates an expected call of DestroyPageTable.
func (mr *MockDriverMockRecorder) DestroyPageTable() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DestroyPageTable", reflect.TypeOf((*MockDriver)(nil).DestroyPageTable))
}

// ActivateTable mocks base method.
func (m *MockDriver) ActivateTable() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ActivateTable")
	ret0, _ := ret[0].(error)
	return ret0
}

// ActivateTable indicates an expected call of ActivateTable.
func (mr *MockDriverMockRecorder) ActivateTable() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ActivateTable", reflect.TypeOf((*MockDriver)(nil).ActivateTable))
}
