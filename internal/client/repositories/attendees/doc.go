// Typical Usage
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := attendees.NewSQLiteRepository(tx)
//	    return repo.Upsert(ctx, &a)
//	})
//	list, _ := attendees.NewSQLiteRepository(db).GetByConvention(ctx, a.ConventionID)
package attendees
