package sqlinline

const QSelectBalance = `--sql 7f4f5ccd-d122-435c-ad79-e59f8555fa94
select credits
from accounts
where id = $1::text;
`

// QReserveCredits performs the balance check, the decrement and the ledger
// append in one statement so concurrent reservations against the same account
// serialize on the row update and can never jointly overdraw. No rows come
// back when the balance does not cover the amount.
const QReserveCredits = `--sql 302603bf-d85c-4b3f-a679-a9e2131856bc
with target as (
    update accounts
    set credits = credits - $2::int,
        updated_at = now()
    where id = $1::text
      and credits >= $2::int
    returning credits
)
insert into ledger_entries (id, account_id, amount, kind, description, related_job_id, balance_after)
select gen_random_uuid(), $1::text, -$2::int, 'generation', $3::text, $4::text, credits
from target
returning id, account_id, amount, kind, description, coalesce(related_job_id, ''), balance_after, created_at;
`

// QCreditAccount upserts the account row so grants and purchase webhooks never
// fail on an identity the auth collaborator has issued but the core has not
// seen yet.
const QCreditAccount = `--sql 4b69fa85-b806-4cd4-98c6-a048b58dd553
with target as (
    insert into accounts (id, credits)
    values ($1::text, $2::int)
    on conflict (id) do update
    set credits = accounts.credits + excluded.credits,
        updated_at = now()
    returning credits
)
insert into ledger_entries (id, account_id, amount, kind, description, related_job_id, balance_after)
select gen_random_uuid(), $1::text, $2::int, $3::text, $4::text, nullif($5::text, ''), credits
from target
returning id, account_id, amount, kind, description, coalesce(related_job_id, ''), balance_after, created_at;
`

// QRefundJob compensates the generation debit for a job exactly once. The
// not-exists guard plus the partial unique index on (related_job_id, kind)
// make a second refund a no-op even under concurrent sweeps; because the
// whole statement is atomic, a violated index rolls back the balance update
// with it.
const QRefundJob = `--sql eed6a530-3f86-4968-b5a6-e8e1dc2fb950
with debit as (
    select account_id, -amount as amount
    from ledger_entries
    where related_job_id = $1::text
      and kind = 'generation'
),
target as (
    update accounts
    set credits = credits + (select amount from debit),
        updated_at = now()
    where id = (select account_id from debit)
      and not exists (
          select 1 from ledger_entries
          where related_job_id = $1::text and kind = 'refund'
      )
    returning id, credits
)
insert into ledger_entries (id, account_id, amount, kind, description, related_job_id, balance_after)
select gen_random_uuid(), id, (select amount from debit), 'refund', $2::text, $1::text, credits
from target
returning id, account_id, amount, kind, description, coalesce(related_job_id, ''), balance_after, created_at;
`

const QSelectEntriesByAccount = `--sql ae5dc498-36bb-4d9a-a7d8-04a34efab22d
select id, account_id, amount, kind, description, coalesce(related_job_id, ''), balance_after, created_at
from ledger_entries
where account_id = $1::text
order by created_at desc, id desc
limit $2::int;
`
