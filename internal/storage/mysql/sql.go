package mysql

const upsertDestinationSQL = `
INSERT INTO destinations
  (name, category, state, description, avg_rating, est_cost)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  category    = VALUES(category),
  state       = VALUES(state),
  description = VALUES(description),
  avg_rating  = VALUES(avg_rating),
  est_cost    = VALUES(est_cost),
  updated_at  = CURRENT_TIMESTAMP
`

// one row per (user, place); re-rating overwrites
const upsertRatingSQL = `
INSERT INTO ratings
  (user_id, place_name, rating)
VALUES
  (?, ?, ?)
ON DUPLICATE KEY UPDATE
  rating   = VALUES(rating),
  rated_at = CURRENT_TIMESTAMP(6)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Ordered by id so the content model sees the catalog in load order.
const listDestinationsSQL = `
SELECT name, category, state, description, avg_rating, est_cost
FROM destinations
ORDER BY id
`

const listRatingsSQL = `
SELECT user_id, place_name, rating
FROM ratings
ORDER BY rated_at, user_id, place_name
`
