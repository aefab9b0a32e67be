// Package diffsync calcula el conjunto mínimo de operaciones de persistencia
// (insert/update/delete) para la colección hija de un agregado, comparando el
// estado en memoria contra el snapshot cargado de la base de datos.
//
// Las entidades de dominio no llevan flags mutables de estado de fila: el
// diff se deriva al momento de guardar, y una fila creada y eliminada dentro
// de la misma sesión nunca aparece en el resultado.
package diffsync

// Op clasifica el destino de un elemento al sincronizar.
type Op int

const (
	OpInsert Op = iota
	OpUpdate
	OpDelete
	OpUnchanged
)

// String para logs y mensajes de test.
func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpUnchanged:
		return "unchanged"
	}
	return "unknown"
}

// Change es una variante etiquetada: operación + elemento afectado.
// Para OpDelete el elemento es el del snapshot (conserva su identidad
// persistida); para el resto, el del estado actual.
type Change[T any] struct {
	Op   Op
	Item T
}

// Diff compara el snapshot previo contra la colección actual.
// key identifica cada elemento (debe ser estable entre carga y guardado);
// equal decide si un elemento presente en ambos lados cambió.
// El orden del resultado es: primero los elementos actuales en su orden,
// luego los eliminados en el orden del snapshot.
func Diff[T any, K comparable](prev, curr []T, key func(T) K, equal func(a, b T) bool) []Change[T] {
	prevByKey := make(map[K]T, len(prev))
	for _, p := range prev {
		prevByKey[key(p)] = p
	}

	changes := make([]Change[T], 0, len(curr)+len(prev))
	seen := make(map[K]struct{}, len(curr))
	for _, c := range curr {
		k := key(c)
		seen[k] = struct{}{}
		p, existed := prevByKey[k]
		switch {
		case !existed:
			changes = append(changes, Change[T]{Op: OpInsert, Item: c})
		case !equal(p, c):
			changes = append(changes, Change[T]{Op: OpUpdate, Item: c})
		default:
			changes = append(changes, Change[T]{Op: OpUnchanged, Item: c})
		}
	}
	for _, p := range prev {
		if _, ok := seen[key(p)]; !ok {
			changes = append(changes, Change[T]{Op: OpDelete, Item: p})
		}
	}
	return changes
}

// Apply ejecuta cada cambio contra los callbacks de persistencia.
// Los deletes van primero: un elemento nuevo puede reutilizar la identidad
// natural de uno eliminado (un número de línea, un código de unidad) y el
// insert chocaría con la restricción única si la fila vieja siguiera ahí.
// Los elementos sin cambios no se tocan. Se detiene en el primer error
// (el caller decide la atomicidad envolviendo en una transacción).
func Apply[T any](changes []Change[T], insert, update, del func(T) error) error {
	for _, ch := range changes {
		if ch.Op == OpDelete {
			if err := del(ch.Item); err != nil {
				return err
			}
		}
	}
	for _, ch := range changes {
		var err error
		switch ch.Op {
		case OpInsert:
			err = insert(ch.Item)
		case OpUpdate:
			err = update(ch.Item)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
