// Package pqtest exercises the queue contract shared by every heap
// variant. A variant's tests hand Run a factory and get the universal
// property checks and the end-to-end scenarios in return.
package pqtest

import (
	"math/rand"
	"sort"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/gopq/pkg/pq"
)

// Maker builds an empty queue able to hold capacity elements.
type Maker[N any] func(capacity uint32) pq.Queue[N]

// Run drives the full conformance suite against queues built by mk.
func Run[N any](t *testing.T, mk Maker[N]) {
	Convey("Given a freshly created queue", t, func() {
		q := mk(16)

		Convey("Then it is empty", func() {
			So(q.Empty(), ShouldBeTrue)
			So(q.Size(), ShouldEqual, 0)
			So(q.FindMin(), ShouldBeNil)
		})

		Convey("When one element is inserted and removed", func() {
			n := q.Insert(7, 42)

			So(q.Empty(), ShouldBeFalse)
			So(q.Size(), ShouldEqual, 1)
			So(q.FindMin(), ShouldEqual, n)
			So(q.Key(n), ShouldEqual, pq.Key(42))
			So(q.Item(n), ShouldEqual, pq.Item(7))

			So(q.DeleteMin(), ShouldEqual, pq.Key(42))

			Convey("Then the queue is empty again", func() {
				So(q.Empty(), ShouldBeTrue)
				So(q.Size(), ShouldEqual, 0)
				So(q.FindMin(), ShouldBeNil)
			})
		})

		q.Destroy()
	})

	Convey("Given the keys 5,3,8,1,4,7,2,6", t, func() {
		q := mk(16)
		for i, key := range []pq.Key{5, 3, 8, 1, 4, 7, 2, 6} {
			q.Insert(pq.Item(i), key)
		}

		Convey("Then find-min sees 1 and the queue drains in order", func() {
			So(q.Key(q.FindMin()), ShouldEqual, pq.Key(1))

			for want := pq.Key(1); want <= 8; want++ {
				So(q.DeleteMin(), ShouldEqual, want)
			}
			So(q.Empty(), ShouldBeTrue)
		})

		q.Destroy()
	})

	Convey("Given the keys 10,20,30", t, func() {
		q := mk(16)
		q.Insert(0, 10)
		q.Insert(1, 20)
		n := q.Insert(2, 30)

		Convey("When the 30 is decreased to 5", func() {
			q.DecreaseKey(n, 5)

			Convey("Then it becomes the minimum and keeps its item", func() {
				So(q.Key(n), ShouldEqual, pq.Key(5))
				So(q.Key(q.FindMin()), ShouldEqual, pq.Key(5))
				So(q.Item(n), ShouldEqual, pq.Item(2))
			})
		})

		q.Destroy()
	})

	Convey("Given the keys 100,90,80,70,60,50", t, func() {
		q := mk(16)
		n := q.Insert(0, 100)
		for i, key := range []pq.Key{90, 80, 70, 60, 50} {
			q.Insert(pq.Item(i+1), key)
		}

		Convey("When the 100 is decreased to 1 and deleted", func() {
			q.DecreaseKey(n, 1)
			So(q.Delete(n), ShouldEqual, pq.Key(1))

			Convey("Then delete-min returns 50", func() {
				So(q.DeleteMin(), ShouldEqual, pq.Key(50))
			})
		})

		q.Destroy()
	})

	Convey("Given the keys 5,2,8,1,9,3", t, func() {
		q := mk(16)
		var n8 *N
		for i, key := range []pq.Key{5, 2, 8, 1, 9, 3} {
			n := q.Insert(pq.Item(i), key)
			if key == 8 {
				n8 = n
			}
		}

		Convey("When the 8 is deleted from the middle", func() {
			So(q.Delete(n8), ShouldEqual, pq.Key(8))

			Convey("Then the queue drains to 1,2,3,5,9", func() {
				for _, want := range []pq.Key{1, 2, 3, 5, 9} {
					So(q.DeleteMin(), ShouldEqual, want)
				}
				So(q.Empty(), ShouldBeTrue)
			})
		})

		q.Destroy()
	})

	Convey("Given a queue after an arbitrary workload", t, func() {
		q := mk(16)
		for i, key := range []pq.Key{9, 4, 6, 2, 11} {
			q.Insert(pq.Item(i), key)
		}
		q.DeleteMin()

		Convey("When it is cleared", func() {
			q.Clear()

			Convey("Then it is empty and usable again", func() {
				So(q.Empty(), ShouldBeTrue)
				So(q.FindMin(), ShouldBeNil)

				q.Insert(0, 7)
				So(q.DeleteMin(), ShouldEqual, pq.Key(7))
				So(q.Empty(), ShouldBeTrue)
			})
		})

		q.Destroy()
	})

	Convey("Given inserts recorded as a trace of 10,20,30 with id 2 dropped to 5", t, func() {
		q := mk(16)
		q.Insert(1, 10)
		n2 := q.Insert(2, 20)
		q.Insert(3, 30)
		q.DecreaseKey(n2, 5)

		Convey("Then the delete-min sequence emits 5,10,30", func() {
			So(q.DeleteMin(), ShouldEqual, pq.Key(5))
			So(q.DeleteMin(), ShouldEqual, pq.Key(10))
			So(q.DeleteMin(), ShouldEqual, pq.Key(30))
		})

		q.Destroy()
	})

	Convey("Given duplicate keys", t, func() {
		q := mk(16)
		for i, key := range []pq.Key{4, 4, 4, 1, 1} {
			q.Insert(pq.Item(i), key)
		}

		Convey("Then the drain is non-decreasing over the multiset", func() {
			for _, want := range []pq.Key{1, 1, 4, 4, 4} {
				So(q.DeleteMin(), ShouldEqual, want)
			}
		})

		q.Destroy()
	})

	Convey("Given handles held across unrelated mutations", t, func() {
		q := mk(32)
		held := q.Insert(99, 500)
		for i := 0; i < 20; i++ {
			q.Insert(pq.Item(i), pq.Key(100+i))
		}
		for i := 0; i < 10; i++ {
			q.DeleteMin()
		}

		Convey("Then the held handle still answers every accessor", func() {
			So(q.Key(held), ShouldEqual, pq.Key(500))
			So(q.Item(held), ShouldEqual, pq.Item(99))

			q.DecreaseKey(held, 1)
			So(q.Key(held), ShouldEqual, pq.Key(1))
			So(q.FindMin(), ShouldEqual, held)
		})

		q.Destroy()
	})

	Convey("Given a randomized churn against a reference model", t, func() {
		const capacity = 512

		q := mk(capacity)
		rng := rand.New(rand.NewSource(42))

		type entry struct {
			handle *N
			key    pq.Key
			item   pq.Item
		}
		var model []entry

		modelMin := func() pq.Key {
			min := pq.MaxKey
			for _, e := range model {
				if e.key < min {
					min = e.key
				}
			}
			return min
		}

		removeOne := func(key pq.Key) {
			for i, e := range model {
				if e.key == key {
					model[i] = model[len(model)-1]
					model = model[:len(model)-1]
					return
				}
			}
		}

		ok := true
		for step := 0; step < 4000 && ok; step++ {
			switch op := rng.Intn(10); {
			case op < 4 && len(model) < capacity:
				key := pq.Key(rng.Intn(1 << 16))
				item := pq.Item(step)
				model = append(model, entry{q.Insert(item, key), key, item})

			case op < 6 && len(model) > 0:
				i := rng.Intn(len(model))
				delta := pq.Key(rng.Intn(1 << 8))
				key := model[i].key
				if delta > key {
					delta = key
				}
				model[i].key = key - delta
				q.DecreaseKey(model[i].handle, key-delta)
				ok = ok && q.Key(model[i].handle) == key-delta &&
					q.Key(q.FindMin()) <= key-delta

			case op < 8 && len(model) > 0:
				i := rng.Intn(len(model))
				got := q.Delete(model[i].handle)
				ok = ok && got == model[i].key
				model[i] = model[len(model)-1]
				model = model[:len(model)-1]

			case len(model) > 0:
				want := modelMin()
				got := q.DeleteMin()
				ok = ok && got == want
				removeOne(got)
			}

			ok = ok && q.Size() == uint32(len(model)) &&
				q.Empty() == (len(model) == 0)
			if len(model) > 0 {
				ok = ok && q.Key(q.FindMin()) == modelMin()
			}
		}
		So(ok, ShouldBeTrue)

		Convey("Then the final drain matches the sorted remainder", func() {
			want := make([]pq.Key, 0, len(model))
			for _, e := range model {
				want = append(want, e.key)
			}
			sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

			got := make([]pq.Key, 0, len(model))
			for !q.Empty() {
				got = append(got, q.DeleteMin())
			}

			So(got, ShouldResemble, want)
		})

		q.Destroy()
	})
}
